package handler

import (
	"net/http"

	"github.com/mediamorph/mediamorph/internal/ctxkeys"
	"github.com/mediamorph/mediamorph/internal/ui"
)

// PageHandler serves the placeholder pages. Presentation is out of scope;
// the pages exist so the gate's route surface is real and forms can reach
// the API.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func pageData(r *http.Request, title string) ui.PageData {
	data := ui.PageData{
		AppName:  "MediaMorph",
		Title:    title,
		SignedIn: ctxkeys.Identity(r.Context()) != nil,
	}
	cfg := ctxkeys.Config(r.Context())
	if cfg != nil {
		data.AppName = cfg.AppName
	}
	return data
}

func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "landing.html", pageData(r, "Welcome"))
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "home.html", pageData(r, "Home"))
}

func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "signin.html", pageData(r, "Sign in"))
}

func (h *PageHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "signup.html", pageData(r, "Sign up"))
}

func (h *PageHandler) VideoUpload(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "video_upload.html", pageData(r, "Upload"))
}

func (h *PageHandler) SocialShare(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, "social_share.html", pageData(r, "Social share"))
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	ui.Render(w, "notfound.html", pageData(r, "Not found"))
}
