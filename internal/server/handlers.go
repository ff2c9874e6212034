package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/meteomap/pkg/buildinfo"
	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/export"
	"github.com/matzehuels/meteomap/pkg/geometry"
	"github.com/matzehuels/meteomap/pkg/interact"
	"github.com/matzehuels/meteomap/pkg/legend"
	"github.com/matzehuels/meteomap/pkg/project"
)

// =============================================================================
// Wire types
// =============================================================================

type stateResponse struct {
	interact.State
	Revision uint64 `json:"revision"`
	Elements int    `json:"elements"`
}

type pointerRequest struct {
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Button string             `json:"button"`
	Mods   interact.Modifiers `json:"mods"`
	Target *interact.Target   `json:"target"`
}

type keyRequest struct {
	Key         string             `json:"key"`
	Mods        interact.Modifiers `json:"mods"`
	InTextInput bool               `json:"inTextInput"`
}

type stageRequest struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
}

type legendEntry struct {
	Group string `json:"group"`
	Key   string `json:"key"`
	Glyph string `json:"glyph"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// patchRequest uses the field names of the project file format.
type patchRequest struct {
	X              *float64 `json:"x"`
	Y              *float64 `json:"y"`
	IconRef        *string  `json:"iconRef"`
	Size           *float64 `json:"size"`
	Text           *string  `json:"text"`
	Value          *string  `json:"value"`
	SpeedKmh       *int     `json:"speedKmh"`
	FontSize       *float64 `json:"fontSize"`
	Color          *string  `json:"color"`
	ShowBackground *bool    `json:"showBackground"`
	ShowBorder     *bool    `json:"showBorder"`
	ZoneType       *string  `json:"zoneType"`
	Radius         *float64 `json:"radius"`
	Hemisphere     *string  `json:"hemisphere"`
}

type elementResponse struct {
	Changed bool                  `json:"changed"`
	Element project.ElementRecord `json:"element"`
	State   stateResponse         `json:"state"`
}

type backgroundRequest struct {
	ID          *string `json:"id"`
	AspectRatio *string `json:"aspectRatio"`
}

type backgroundResponse struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	AspectRatio string        `json:"aspectRatio"`
	State       stateResponse `json:"state"`
}

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func parseButton(s string) (interact.Button, error) {
	switch s {
	case "", "left":
		return interact.ButtonLeft, nil
	case "middle":
		return interact.ButtonMiddle, nil
	case "right":
		return interact.ButtonRight, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown button %q", s)
}

// patch validates the request and converts it to a document patch.
func (req patchRequest) patch() (document.Patch, error) {
	p := document.Patch{
		X:              req.X,
		Y:              req.Y,
		IconRef:        req.IconRef,
		Size:           req.Size,
		Text:           req.Text,
		Value:          req.Value,
		Speed:          req.SpeedKmh,
		FontSize:       req.FontSize,
		Color:          req.Color,
		ShowBackground: req.ShowBackground,
		ShowBorder:     req.ShowBorder,
		Radius:         req.Radius,
	}
	if req.Color != nil {
		if err := errors.ValidateColor(*req.Color); err != nil {
			return document.Patch{}, err
		}
	}
	if req.ZoneType != nil {
		z := document.ZoneType(*req.ZoneType)
		if z != document.Anticyclone && z != document.Depression {
			return document.Patch{}, errors.New(errors.ErrCodeInvalidInput, "unknown zone type %q", *req.ZoneType)
		}
		p.Zone = &z
	}
	if req.Hemisphere != nil {
		h := document.Hemisphere(*req.Hemisphere)
		if h != document.North && h != document.South {
			return document.Patch{}, errors.New(errors.ErrCodeInvalidInput, "unknown hemisphere %q", *req.Hemisphere)
		}
		p.Hemisphere = &h
	}
	if p.Empty() {
		return document.Patch{}, errors.New(errors.ErrCodeInvalidInput, "patch changes nothing")
	}
	return p, nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": buildinfo.UserAgent()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doc := s.machine.Session().Document()
	s.mu.Unlock()

	data, err := project.Marshal(doc, s.clock.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := project.Read(http.MaxBytesReader(w, r.Body, maxProjectBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Replace(doc)
	s.logger.Info("project imported", "elements", len(doc.Elements))
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !s.decode(w, r, &req) {
		return
	}
	mp := geometry.Mapper{Origin: geometry.Point{X: req.OriginX, Y: req.OriginY}, Width: req.Width, Height: req.Height}
	if !mp.Valid() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "stage size must be positive"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetMapper(mp)
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var tool interact.Tool
	if !s.decode(w, r, &tool) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.machine.SelectTool(tool) {
		s.writeStatus(w, http.StatusConflict, errors.New(errors.ErrCodeInvalidInput, "tool %q cannot be selected now", tool.Kind))
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !s.decode(w, r, &req) {
		return
	}
	button, err := parseButton(req.Button)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ev := interact.PointerEvent{
		Pos:    geometry.Point{X: req.X, Y: req.Y},
		Button: button,
		Mods:   req.Mods,
		Target: req.Target,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch phase := chi.URLParam(r, "phase"); phase {
	case "down":
		s.machine.PointerDown(ev)
	case "move":
		s.machine.PointerMove(ev)
	case "up":
		s.machine.PointerUp(ev)
	case "leave":
		s.machine.PointerLeave()
	default:
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown pointer phase %q", phase))
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	handled := s.machine.Key(interact.KeyEvent{Key: req.Key, Mods: req.Mods, InTextInput: req.InTextInput})
	writeJSON(w, http.StatusOK, map[string]any{"handled": handled, "state": s.stateLocked()})
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := s.machine.Undo()
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied, "state": s.stateLocked()})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	action, ok := interact.ParseAction(name)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown context action %q", name))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.machine.ContextAction(action) {
		s.writeStatus(w, http.StatusConflict, errors.New(errors.ErrCodeInvalidInput, "no context menu offers %q", name))
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handlePatchElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req patchRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.Mode().Gesture() {
		s.writeStatus(w, http.StatusConflict, errors.New(errors.ErrCodeInvalidInput, "cannot edit during a %s gesture", s.machine.Mode()))
		return
	}
	sess := s.machine.Session()
	e, ok := sess.Find(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "element %q not found", id))
		return
	}
	if e.Locked {
		s.writeError(w, errors.New(errors.ErrCodeLocked, "element %q is locked", id))
		return
	}
	changed := sess.Update(id, p)
	e, _ = sess.Find(id)
	if changed {
		s.logger.Debug("element updated", "id", id, "kind", e.Kind())
	}
	writeJSON(w, http.StatusOK, elementResponse{Changed: changed, Element: project.EncodeElement(e), State: s.stateLocked()})
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	var req backgroundRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == nil && req.AspectRatio == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "request sets neither id nor aspectRatio"))
		return
	}
	if req.AspectRatio != nil {
		if _, err := errors.ParseAspectRatio(*req.AspectRatio); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.machine.Session()
	if req.ID != nil {
		if _, ok := sess.Catalog().Background(*req.ID); !ok {
			s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown background %q", *req.ID))
			return
		}
		sess.SetBackground(*req.ID)
	}
	if req.AspectRatio != nil {
		sess.SetAspectRatio(strings.TrimSpace(*req.AspectRatio))
	}
	bg := sess.Background()
	s.logger.Info("background changed", "id", bg.ID, "aspect", bg.AspectRatio)
	writeJSON(w, http.StatusOK, backgroundResponse{ID: bg.ID, Source: bg.Source, AspectRatio: bg.AspectRatio, State: s.stateLocked()})
}

func (s *Server) handleAddIcon(w http.ResponseWriter, r *http.Request) {
	var ic catalog.Icon
	if !s.decode(w, r, &ic) {
		return
	}
	if err := errors.ValidateElementID(ic.ID); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(ic.Glyph) == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "icon %q has no glyph", ic.ID))
		return
	}
	if ic.Label == "" {
		ic.Label = ic.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Session().AddCustomIcon(ic)
	s.logger.Info("custom icon defined", "id", ic.ID)
	writeJSON(w, http.StatusOK, legendEntries(s.machine.Session().Legend()))
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entries := s.machine.Session().Legend()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, legendEntries(entries))
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts := []export.Option{export.WithPixelRatio(s.export.PixelRatio), export.WithFill(s.export.Fill)}
	q := r.URL.Query()
	if v := q.Get("pixelRatio"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil || ratio <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid pixelRatio %q", v))
			return
		}
		opts = append(opts, export.WithPixelRatio(ratio))
	}
	if v := q.Get("fill"); v != "" {
		opts = append(opts, export.WithFill(v))
	}

	s.mu.Lock()
	sess := s.machine.Session()
	stage := export.NewStage(sess.Document(), sess.Resolver(), s.export.Width, nil)
	s.mu.Unlock()

	data, err := export.Export(r.Context(), s.rasterizer, stage, opts...)
	if err != nil {
		s.logger.Warn("export failed", "err", err)
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// =============================================================================
// Helpers
// =============================================================================

// stateLocked must be called with s.mu held.
func (s *Server) stateLocked() stateResponse {
	sess := s.machine.Session()
	return stateResponse{
		State:    s.machine.State(),
		Revision: sess.Revision(),
		Elements: len(sess.Elements()),
	}
}

func legendEntries(entries []legend.Entry) []legendEntry {
	out := make([]legendEntry, len(entries))
	for i, e := range entries {
		out[i] = legendEntry{Group: e.Group.String(), Key: e.Key, Glyph: e.Glyph, Label: e.Label, Count: e.Count}
	}
	return out
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.IsValidation(err):
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeLocked):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeStatus(w, statusFor(err), err)
}

func (s *Server) writeStatus(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintln(w, `{"error":"INTERNAL_ERROR"}`)
	}
}
