package connector

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pachadotdev/bello/internal/fileutil"
	"github.com/pachadotdev/bello/internal/importers"
	"github.com/pachadotdev/bello/internal/logging"
	"github.com/pachadotdev/bello/internal/records"
)

// protocolVersion is what the browser helper probes for.
const protocolVersion = "1.0.0"

const defaultItemLimit = 50

type connectorItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Year       string `json:"year"`
	DOI        string `json:"doi"`
	URL        string `json:"url"`
	Collection string `json:"collection"`
}

type saveAttachment struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
}

type saveData struct {
	Title       string           `json:"title"`
	Authors     string           `json:"authors"`
	Year        string           `json:"year"`
	Type        string           `json:"type"`
	BibtexType  string           `json:"bibtexType"`
	DOI         string           `json:"doi"`
	ISBN        string           `json:"isbn"`
	Publisher   string           `json:"publisher"`
	Pages       string           `json:"pages"`
	Volume      string           `json:"volume"`
	Number      string           `json:"number"`
	Journal     string           `json:"journal"`
	URL         string           `json:"url"`
	Abstract    string           `json:"abstract"`
	Extra       string           `json:"extra"`
	Collection  string           `json:"collection"`
	Attachments []saveAttachment `json:"attachments"`
}

type saveRequest struct {
	Action string   `json:"action"`
	Data   saveData `json:"data"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func (s *Server) dispatch(conn net.Conn, req *request) {
	switch {
	case req.Method == "GET" && req.Path == "/connector/status":
		writeResponse(conn, "200 OK", []byte(`{"version":"`+protocolVersion+`"}`))

	case req.Method == "GET" && strings.HasPrefix(req.Path, "/connector/items"):
		s.handleItems(conn, req.Path)

	case req.Method == "POST" && req.Path == "/connector/save":
		s.handleSave(conn, req.Body)

	default:
		writeResponse(conn, "404 Not Found", []byte(`{"error":"not found"}`))
	}
}

func (s *Server) handleItems(conn net.Conn, path string) {
	limit := itemLimit(path, s.cfg.ConnectorMaxItems)

	summaries, err := s.service.Store().ListAll(s.ctx)
	if err != nil {
		s.logger.Error("list items failed", logging.Error(err))
		writeResponse(conn, "200 OK", []byte(`[]`))
		return
	}

	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	items := make([]connectorItem, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, connectorItem{
			ID:         summary.ID,
			Title:      summary.Title,
			Authors:    summary.Authors,
			Year:       summary.Year,
			DOI:        summary.DOI,
			URL:        summary.URL,
			Collection: summary.Collection,
		})
	}

	out, err := json.Marshal(items)
	if err != nil {
		out = []byte(`[]`)
	}
	writeResponse(conn, "200 OK", out)
}

// itemLimit extracts limit=N from the query string. Junk and non-positive
// values fall back to the default; values above the configured cap clamp to
// the cap instead of being honored literally.
func itemLimit(path string, maxItems int) int {
	limit := defaultItemLimit
	if q := strings.IndexByte(path, '?'); q >= 0 {
		values, err := url.ParseQuery(path[q+1:])
		if err == nil {
			if raw := values.Get("limit"); raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
					limit = parsed
				}
			}
		}
	}
	if maxItems > 0 && limit > maxItems {
		limit = maxItems
	}
	return limit
}

func (s *Server) handleSave(conn net.Conn, body []byte) {
	var req saveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.logger.Warn("invalid save payload", logging.Error(err))
		respondSave(conn, saveResponse{})
		return
	}

	data := req.Data
	incoming := &records.Record{
		Title:      data.Title,
		Authors:    data.Authors,
		Year:       data.Year,
		Type:       data.Type,
		DOI:        data.DOI,
		ISBN:       data.ISBN,
		Publisher:  data.Publisher,
		Pages:      data.Pages,
		Volume:     data.Volume,
		Number:     data.Number,
		Journal:    data.Journal,
		URL:        data.URL,
		Abstract:   data.Abstract,
		Extra:      data.Extra,
		Collection: data.Collection,
	}
	// The page scraper sends both a display type and a BibTeX type; the
	// BibTeX one wins when present.
	if data.BibtexType != "" {
		incoming.Type = data.BibtexType
	}

	var attach importers.AttachmentWriter
	if len(data.Attachments) > 0 {
		attach = s.attachmentWriter(data.Attachments)
	}

	rec, merged, err := s.service.Save(s.ctx, incoming, attach)
	if err != nil {
		s.logger.Error("save failed", logging.Error(err))
		respondSave(conn, saveResponse{})
		return
	}

	s.logger.Info("record saved",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.Bool("merged", merged))
	respondSave(conn, saveResponse{Success: true, ID: rec.ID})
}

// attachmentWriter decodes base64 payloads into the target record's storage
// directory. Undecodable or unwritable attachments are skipped.
func (s *Server) attachmentWriter(attachments []saveAttachment) importers.AttachmentWriter {
	return func(targetID string) []string {
		itemDir := filepath.Join(s.cfg.StorageDir, targetID)
		if err := os.MkdirAll(itemDir, 0o755); err != nil {
			s.logger.Warn("cannot create storage directory",
				logging.String(logging.FieldPath, itemDir),
				logging.Error(err))
			return nil
		}

		var written []string
		for _, attachment := range attachments {
			if attachment.Filename == "" || attachment.Data == "" {
				continue
			}
			payload, err := base64.StdEncoding.DecodeString(attachment.Data)
			if err != nil {
				s.logger.Warn("cannot decode attachment",
					logging.String("filename", attachment.Filename),
					logging.Error(err))
				continue
			}
			dst := fileutil.UniqueDestination(itemDir, filepath.Base(attachment.Filename))
			if err := os.WriteFile(dst, payload, 0o644); err != nil {
				s.logger.Warn("cannot write attachment",
					logging.String(logging.FieldPath, dst),
					logging.Error(err))
				continue
			}
			written = append(written, dst)
		}
		return written
	}
}

func respondSave(conn net.Conn, resp saveResponse) {
	out, err := json.Marshal(resp)
	if err != nil {
		out = []byte(`{"success":false,"id":""}`)
	}
	writeResponse(conn, "200 OK", out)
}
