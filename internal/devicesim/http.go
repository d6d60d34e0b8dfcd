// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devicesim

import (
	"encoding/csv"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler routes the push endpoint at / and the HTTP API under /api.
func (d *Device) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", d.ServeWS)
	r.Route("/api", func(r chi.Router) {
		r.Post("/rename", d.handleRename)
		r.Post("/delete", d.handleDelete)
		r.Get("/logs/csv", d.handleExport)
	})
	return r
}

func writeOK(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": ok})
}

func formIndex(r *http.Request) int {
	idx, err := strconv.Atoi(r.PostFormValue("idx"))
	if err != nil {
		return -1
	}
	return idx
}

func (d *Device) handleRename(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOK(w, false)
		return
	}
	err := d.Rename(formIndex(r), r.PostFormValue("uid"), r.PostFormValue("name"))
	if err != nil {
		log.Printf("DEVICESIM_RENAME_FAILED | error=%v", err)
	}
	writeOK(w, err == nil)
}

func (d *Device) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOK(w, false)
		return
	}
	err := d.Delete(formIndex(r), r.PostFormValue("uid"))
	if err != nil {
		log.Printf("DEVICESIM_DELETE_FAILED | error=%v", err)
	}
	writeOK(w, err == nil)
}

func (d *Device) handleExport(w http.ResponseWriter, _ *http.Request) {
	logs := d.Logs()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"no", "name", "uid", "time"})
	for i, ev := range logs {
		_ = cw.Write([]string{strconv.Itoa(i + 1), ev.Name, ev.UID, ev.Time})
	}
	cw.Flush()
}
