package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/srcsetlab/pkg/errors"
	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/sandbox"
	"github.com/matzehuels/srcsetlab/pkg/srcset"
)

func sandboxID(r *http.Request) uuid.UUID {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// ensureSandbox returns the caller's sandbox, creating one when the request
// carries no live cookie. A new sandbox starts from the shared default image.
func (s *Server) ensureSandbox(w http.ResponseWriter, r *http.Request) *sandbox.Sandbox {
	if sb, ok := s.store.Lookup(sandboxID(r)); ok {
		return sb
	}

	id, sb := s.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	sb.SetParams(s.defaults)
	if img := s.defaultImage(r.Context()); img != "" {
		sb.Complete(sb.Begin(s.source), img, nil)
	}
	return sb
}

// defaultImage resolves the initial photo page once for all visitors.
// After a failure the lookup is retried at most once per defaultRetry.
func (s *Server) defaultImage(ctx context.Context) string {
	if img := s.initial.ImageURL(); img != "" {
		return img
	}

	s.initialMu.Lock()
	defer s.initialMu.Unlock()
	if img := s.initial.ImageURL(); img != "" {
		return img
	}
	now := s.now()
	if !s.initialTried.IsZero() && now.Sub(s.initialTried) < defaultRetry {
		return ""
	}
	s.initialTried = now
	s.initial.Submit(ctx, s.source)
	return s.initial.ImageURL()
}

// handlePage renders the sandbox. Visitors without a sandbox see the
// default image and get one only once they submit a source.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	base, source := s.defaults, s.source
	sb, ok := s.store.Lookup(sandboxID(r))
	if ok {
		base, source = sb.Params(), sb.Source()
	}

	p := formParams(r.URL.Query(), base)
	if ok {
		sb.SetParams(p)
		p = p.WithBaseURL(sb.ImageURL())
	} else {
		p = p.WithBaseURL(s.defaultImage(r.Context()))
	}

	data := pageData{
		Source:     source,
		Params:     p,
		Query:      template.URL(encodeParams(p).Encode()),
		Breakpoint: imgparams.BreakpointsRange,
		FocalPoint: imgparams.FocalPointRange,
		Zoom:       imgparams.ZoomRange,
	}
	status := http.StatusOK
	if err := apperrors.ValidateParams(p); err != nil {
		data.Problem = apperrors.UserMessage(err)
		status = apperrors.HTTPStatus(err)
	} else if p.BaseURL != "" {
		res := srcset.Build(p)
		data.Result = &res
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	sb := s.ensureSandbox(w, r)
	p := formParams(r.PostForm, sb.Params())
	sb.SetParams(p)

	if source := r.PostForm.Get(keyURL); source != "" {
		// Lookup failures only show up as an unchanged image.
		sb.Submit(r.Context(), source)
	}
	http.Redirect(w, r, "/?"+encodeParams(p).Encode(), http.StatusSeeOther)
}

// handleReset drops the caller's sandbox and its cookie.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if id := sandboxID(r); id != uuid.Nil {
		s.store.Delete(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSrcset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	base := s.defaults
	if sb, ok := s.store.Lookup(sandboxID(r)); ok {
		base = sb.Params()
	}
	p := parseParams(q, base)

	if u := q.Get(keyURL); u != "" {
		if err := apperrors.ValidateURL(u); err != nil {
			s.writeError(w, err)
			return
		}
		p = p.WithBaseURL(u)
	}
	if p.BaseURL == "" {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "no image: pass ?url= or submit a source first"))
		return
	}
	if err := apperrors.ValidateParams(p); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, srcset.Build(p))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get(keyURL)
	if page == "" {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "missing url parameter"))
		return
	}
	imageURL, err := s.resolver.ResolveImageURL(r.Context(), page)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"image_url": imageURL})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

type errorBody struct {
	Error struct {
		Code    apperrors.Code `json:"code"`
		Message string         `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "err", err)
	}

	var body errorBody
	body.Error.Code = apperrors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = apperrors.ErrCodeInternal
	}
	body.Error.Message = apperrors.UserMessage(err)
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
