package loadcase

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"Keel/internal/auth"
	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/scenario"
	"Keel/internal/log"
	"Keel/internal/repo"
	"Keel/internal/vessel"

	"github.com/gorilla/mux"
)

const maxUpload = 8 << 20

type Handler struct {
	Store repo.SnapshotStore
}

type saved struct {
	ID string `json:"id"`
}

type imported struct {
	Count   int                 `json:"count"`
	Weights []vessel.WeightItem `json:"weights"`
}

func owner(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func decodeCase(r *http.Request) (vessel.LoadCase, error) {
	var lc vessel.LoadCase
	if err := json.NewDecoder(r.Body).Decode(&lc); err != nil {
		return lc, calcerr.New(calcerr.InvalidInput, "snapshot", "invalid request payload: %v", err)
	}
	return lc, nil
}

// Save stores the posted load case as a snapshot document.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}
	f, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		scenario.Write(w, nil, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	lc, err := decodeCase(r)
	if err == nil {
		err = lc.Validate()
	}
	if err != nil {
		scenario.Write(w, nil, err)
		return
	}
	doc, err := Marshal(lc, f)
	if err != nil {
		scenario.Write(w, nil, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = lc.Name
	}
	id, err := h.Store.SaveSnapshot(r.Context(), repo.Snapshot{OwnerID: uid, Name: name, Format: string(f), Document: doc})
	if err != nil {
		log.Errorw("saving snapshot", "user_id", uid, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	scenario.Write(w, saved{ID: id}, nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}
	list, err := h.Store.ListSnapshots(r.Context(), uid)
	if err != nil {
		log.Errorw("listing snapshots", "user_id", uid, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	scenario.Write(w, list, nil)
}

// Get returns the stored document, converted when another format is asked for.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}
	s, err := h.Store.GetSnapshot(r.Context(), uid, mux.Vars(r)["id"])
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorw("loading snapshot", "user_id", uid, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	doc, stored := s.Document, Format(s.Format)
	want := stored
	if q := r.URL.Query().Get("format"); q != "" {
		if want, err = ParseFormat(q); err != nil {
			scenario.Write(w, nil, err)
			return
		}
	}
	if want != stored {
		lc, err := Unmarshal(doc, stored)
		if err == nil {
			doc, err = Marshal(lc, want)
		}
		if err != nil {
			scenario.Write(w, nil, err)
			return
		}
	}
	w.Header().Set("Content-Type", want.ContentType())
	w.Write(doc)
}

// Export writes the weight table of the posted load case as xlsx (default) or csv.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	lc, err := decodeCase(r)
	if err != nil {
		scenario.Write(w, nil, err)
		return
	}
	rows := Rows(lc)
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="weights.csv"`)
		if err := WriteCSV(w, rows); err != nil {
			log.Errorw("writing csv", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="weights.xlsx"`)
	if err := WriteXLSX(w, rows); err != nil {
		log.Errorw("writing xlsx", "error", err)
	}
}

// Import reads an uploaded weight table (form field "file") into weight items.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		scenario.Write(w, nil, calcerr.New(calcerr.InvalidInput, "import", "file required"))
		return
	}
	defer file.Close()

	items, err := ReadTable(hdr.Filename, file)
	if err != nil {
		scenario.Write(w, nil, err)
		return
	}
	scenario.Write(w, imported{Count: len(items), Weights: items}, nil)
}

// ReadTable picks the reader from the file extension.
func ReadTable(name string, r io.Reader) ([]vessel.WeightItem, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ReadCSV(r)
	}
	return ReadXLSX(r)
}
