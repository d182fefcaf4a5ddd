package main

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"

	"github.com/bnuredini/homehub/ui"
)

func routes(uni *universe) http.Handler {
	h := uni.Handler

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	r.HandleFunc("/", h.HomeGet).Methods("GET")
	r.HandleFunc("/calendar", h.CalendarGet).Methods("GET")
	r.HandleFunc("/network", h.NetworkGet).Methods("GET")
	r.HandleFunc("/files", h.FilesGet).Methods("GET")
	r.HandleFunc("/partials/weather", h.WeatherPartialGet).Methods("GET")
	r.HandleFunc("/partials/network", h.NetworkPartialGet).Methods("GET")

	r.HandleFunc("/api/weather", h.WeatherGet).Methods("GET")
	r.HandleFunc("/api/cities/search", h.CitiesSearchGet).Methods("GET")
	r.HandleFunc("/api/user/settings", h.SettingsGet).Methods("GET")
	r.HandleFunc("/api/user/settings", h.SettingsPost).Methods("POST")

	r.HandleFunc("/network/api/network", h.NetworkStatusGet).Methods("GET")
	r.HandleFunc("/network/api/network/quality", h.NetworkQualityGet).Methods("GET")
	r.HandleFunc("/network/api/devices", h.DevicesGet).Methods("GET")
	r.HandleFunc("/network/api/devices/{mac}", h.DevicePut).Methods("PUT")

	r.HandleFunc("/api/reminders", h.RemindersGet).Methods("GET")
	r.HandleFunc("/api/reminders", h.RemindersPost).Methods("POST")
	r.HandleFunc("/api/reminders/{id:[0-9]+}", h.ReminderDelete).Methods("DELETE")

	r.HandleFunc("/api/files/list", h.FilesListGet).Methods("GET")
	r.HandleFunc("/api/files/upload", h.FileUploadPost).Methods("POST")
	r.HandleFunc("/api/files/create-folder", h.FolderCreatePost).Methods("POST")
	r.HandleFunc("/api/files/delete", h.FileDeletePost).Methods("POST")
	r.HandleFunc("/api/files/download", h.FileDownloadGet).Methods("GET")
	r.HandleFunc("/api/files/generate-share-link", h.ShareLinkPost).Methods("POST")
	r.HandleFunc("/share/{link}", h.ShareGet).Methods("GET")

	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(ui.Files))).Methods("GET")

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	return sentryHandler.Handle(r)
}
