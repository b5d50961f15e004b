package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/internal/extract"
	"github.com/RobinCoderZhao/pdfcompare/internal/report"
)

// handleCompare is the main comparison endpoint.
//
// Expects a multipart/form-data POST with:
//
//	pdf_a, pdf_b       – the two documents (.pdf, .html, .htm)
//	ignore_whitespace  – "true" to collapse whitespace runs
//	ignore_case        – "true" to lowercase before diffing
//	ignore_pattern     – regex; fully matching lines are dropped
//	strip_header_lines – lines to strip from the top of each page
//	strip_footer_lines – lines to strip from the bottom of each page
func (s *Server) handleCompare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 2*s.maxUploadMB<<20)
		if err := r.ParseMultipartForm(s.maxUploadMB << 20); err != nil {
			respondError(w, http.StatusBadRequest, "Two document files are required (pdf_a and pdf_b).")
			return
		}

		docA, nameA, err := s.readUpload(r, "pdf_a")
		if err != nil {
			respondUploadError(w, err)
			return
		}
		docB, nameB, err := s.readUpload(r, "pdf_b")
		if err != nil {
			respondUploadError(w, err)
			return
		}

		rules, err := rulesFromForm(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := compare.Compare(compare.Input{
			A:     docA.Lines,
			B:     docB.Lines,
			Rules: rules,
			NameA: nameA,
			NameB: nameB,
		})
		if err != nil {
			if errors.Is(err, compare.ErrInvalidConfiguration) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.logger.Error("comparison failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Comparison failed.")
			return
		}

		reportMD := report.Generate(result.Blocks, result.Stats, nameA, nameB)

		resp := map[string]any{
			"diff_blocks":   result.Blocks,
			"stats":         result.Stats,
			"severity":      result.Stats.Severity(),
			"unified_diff":  result.Unified,
			"report":        reportMD,
			"warnings":      result.Warnings,
			"name_a":        nameA,
			"name_b":        nameB,
			"metadata_a":    docA.Metadata,
			"metadata_b":    docB.Metadata,
			"metadata_diff": compare.CompareMetadata(docA.Metadata, docB.Metadata),
		}

		if userID := getUserID(r); userID > 0 && s.historyStore != nil {
			id, err := s.historyStore.Save(r.Context(), userID, nameA, nameB, result.Stats, reportMD)
			if err != nil {
				s.logger.Error("failed to save comparison", "error", err, "user_id", userID)
			} else {
				resp["history_id"] = id
			}
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

func respondUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		respondError(w, ue.status, ue.message)
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// readUpload extracts one uploaded document from the multipart form.
func (s *Server) readUpload(r *http.Request, field string) (*extract.Document, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", &uploadError{http.StatusBadRequest, "Two document files are required (pdf_a and pdf_b)."}
	}
	defer file.Close()

	name := safeFilename(header)
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", &uploadError{http.StatusBadRequest, "Failed to read uploaded file."}
	}

	doc, err := extract.FromBytes(name, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return nil, "", &uploadError{http.StatusBadRequest, "Both files must be PDF or HTML documents."}
		}
		s.logger.Error("document extraction failed", "name", name, "error", err)
		return nil, "", &uploadError{http.StatusUnprocessableEntity, "Failed to extract text from one or both documents."}
	}
	return doc, name, nil
}

// safeFilename returns a display name for an uploaded file, falling back
// to "unnamed.pdf" when the browser did not send one.
func safeFilename(header *multipart.FileHeader) string {
	if header.Filename == "" {
		return "unnamed.pdf"
	}
	return header.Filename
}

func rulesFromForm(r *http.Request) (compare.IgnoreRules, error) {
	rules := compare.IgnoreRules{
		CollapseWhitespace: r.FormValue("ignore_whitespace") == "true",
		IgnoreCase:         r.FormValue("ignore_case") == "true",
		IgnoreRegex:        r.FormValue("ignore_pattern"),
	}
	top, err := formInt(r, "strip_header_lines")
	if err != nil {
		return rules, err
	}
	bottom, err := formInt(r, "strip_footer_lines")
	if err != nil {
		return rules, err
	}
	rules.StripHeaderFooter = compare.StripHeaderFooter{
		LinesFromTop:    top,
		LinesFromBottom: bottom,
	}
	return rules, nil
}

func formInt(r *http.Request, field string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(field + " must be an integer")
	}
	return n, nil
}
