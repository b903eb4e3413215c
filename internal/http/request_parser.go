package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"catatan/internal/core"
	"catatan/internal/finance"
	"catatan/internal/report"
)

var errBadRequest = errors.New("bad request")

// parseGranularity reads ?period=, defaulting to def when absent.
func parseGranularity(r *http.Request, def report.Granularity) (report.Granularity, error) {
	v := strings.TrimSpace(r.URL.Query().Get("period"))
	if v == "" {
		return def, nil
	}
	return report.ParseGranularity(v)
}

// parseFlowParam reads ?flow=; an empty value is returned as "".
func parseFlowParam(r *http.Request) (core.Flow, error) {
	v := strings.TrimSpace(r.URL.Query().Get("flow"))
	if v == "" {
		return "", nil
	}
	return core.ParseFlow(v)
}

// createRequest mirrors finance.CreateInput but accepts the amount as a
// JSON number or as an id-ID formatted string ("50.000").
type createRequest struct {
	Amount          json.RawMessage `json:"amount"`
	CategoryID      string          `json:"categoryId"`
	Flow            string          `json:"type"`
	Note            string          `json:"note"`
	Title           string          `json:"title"`
	TransactionDate string          `json:"transactionDate"`
}

// parseCreateInput decodes a JSON or form-encoded body. An unreadable
// amount decodes as zero so validation reports it.
func parseCreateInput(r *http.Request) (finance.CreateInput, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if ct == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return finance.CreateInput{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return finance.CreateInput{
			Amount:          parseAmountString(r.Form.Get("amount")),
			CategoryID:      sanitizeInput(r.Form.Get("categoryId")),
			Flow:            sanitizeInput(r.Form.Get("type")),
			Note:            sanitizeInput(r.Form.Get("note")),
			Title:           sanitizeInput(r.Form.Get("title")),
			TransactionDate: sanitizeInput(r.Form.Get("transactionDate")),
		}, nil
	}

	var req createRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return finance.CreateInput{}, fmt.Errorf("%w: empty body", errBadRequest)
		}
		return finance.CreateInput{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return finance.CreateInput{
		Amount:          parseAmountJSON(req.Amount),
		CategoryID:      sanitizeInput(req.CategoryID),
		Flow:            sanitizeInput(req.Flow),
		Note:            sanitizeInput(req.Note),
		Title:           sanitizeInput(req.Title),
		TransactionDate: sanitizeInput(req.TransactionDate),
	}, nil
}

func parseAmountJSON(raw json.RawMessage) int64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return 0
		}
		return parseAmountString(unquoted)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	units := d.Round(0)
	if !units.IsPositive() || !units.LessThan(decimal.NewFromInt(core.MaxAmountUnits)) {
		return 0
	}
	return units.IntPart()
}

func parseAmountString(s string) int64 {
	units, err := core.ParseAmount(s)
	if err != nil {
		return 0
	}
	return units
}

// sanitizeInput trims and drops control characters except tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
