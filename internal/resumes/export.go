package resumes

import (
	"context"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

const (
	maxInlineImage = 5 << 20
	pdfTimeout     = 45 * time.Second
	minQRSize      = 128
	maxQRSize      = 1024
)

func (h *Handler) registerExportRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/preview", h.exportPreview)
	rg.GET("/resumes/:id/export/html", h.exportHTML)
	rg.GET("/resumes/:id/export/word", h.exportWord)
	rg.GET("/resumes/:id/export/markdown", h.exportMarkdown)
	rg.GET("/resumes/:id/export/pdf", h.exportPDF)
	rg.GET("/resumes/:id/qr.png", h.qrCode)
	rg.POST("/render/preview", h.renderPreview)
	rg.POST("/render/html", h.renderHTML)
}

// exportTarget is a readable résumé plus what every encoder needs to render it.
type exportTarget struct {
	res    StoredResume
	lang   render.Language
	assets render.Assets
}

func (h *Handler) loadTarget(c *gin.Context, withAssets bool) (exportTarget, bool) {
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return exportTarget{}, false
	}
	t := exportTarget{res: res, lang: h.language(c.Query("lang"))}
	if withAssets {
		t.assets = h.assets(c.Request.Context(), res.UserID, res.Data.PersonalInfo.ProfileImageRef, true)
	}
	return t, true
}

func (h *Handler) exportPreview(c *gin.Context) {
	t, ok := h.loadTarget(c, false)
	if !ok {
		return
	}
	out, err := render.Preview(t.res.Data, t.res.Selection(), t.lang)
	if err != nil {
		renderFailed(c, "preview", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func (h *Handler) exportHTML(c *gin.Context) {
	t, ok := h.loadTarget(c, true)
	if !ok {
		return
	}
	out, err := render.PrintHTML(t.res.Data, t.res.Selection(), t.lang, t.assets)
	if err != nil {
		renderFailed(c, "html", err)
		return
	}
	respond.Document(c, "text/html; charset=utf-8", "", out)
}

func (h *Handler) exportWord(c *gin.Context) {
	t, ok := h.loadTarget(c, true)
	if !ok {
		return
	}
	out, err := render.WordHTML(t.res.Data, t.res.Selection(), t.lang, t.assets)
	if err != nil {
		renderFailed(c, "word", err)
		return
	}
	respond.Document(c, "application/msword", util.DownloadName(t.res.Data.PersonalInfo.FullName, "doc"), out)
}

func (h *Handler) exportMarkdown(c *gin.Context) {
	t, ok := h.loadTarget(c, false)
	if !ok {
		return
	}
	out, err := render.Markdown(t.res.Data, t.res.Selection(), t.lang)
	if err != nil {
		renderFailed(c, "markdown", err)
		return
	}
	respond.Document(c, "text/markdown; charset=utf-8", "", out)
}

func (h *Handler) exportPDF(c *gin.Context) {
	if h.opts.PDF == nil {
		respond.Error(c, http.StatusNotImplemented, "pdf_unavailable", "PDF export is not enabled on this server", nil)
		return
	}
	t, ok := h.loadTarget(c, false)
	if !ok {
		return
	}
	// Chrome runs on this host, so the PDF only embeds inlined images.
	t.assets = h.assets(c.Request.Context(), t.res.UserID, t.res.Data.PersonalInfo.ProfileImageRef, false)
	ctx, cancel := context.WithTimeout(c.Request.Context(), pdfTimeout)
	defer cancel()
	out, err := render.PDF(ctx, h.opts.PDF, t.res.Data, t.res.Selection(), t.lang, t.assets)
	if err != nil {
		if errors.Is(err, render.ErrPDFUnavailable) {
			respond.Error(c, http.StatusNotImplemented, "pdf_unavailable", "PDF export is not enabled on this server", nil)
			return
		}
		renderFailed(c, "pdf", err)
		return
	}
	respond.Document(c, "application/pdf", util.DownloadName(t.res.Data.PersonalInfo.FullName, "pdf"), out)
}

func (h *Handler) qrCode(c *gin.Context) {
	t, ok := h.loadTarget(c, false)
	if !ok {
		return
	}
	size := 256
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "size must be between 128 and 1024", nil)
			return
		}
		size = n
	}
	png, err := render.QRCode(render.PublicURL(h.opts.PublicOrigin, t.res.ID), size)
	if err != nil {
		renderFailed(c, "qr", err)
		return
	}
	respond.Document(c, "image/png", "", png)
}

func (h *Handler) renderPreview(c *gin.Context) {
	doc, sel, lang, ok := h.bindRender(c)
	if !ok {
		return
	}
	out, err := render.Preview(doc, sel, lang)
	if err != nil {
		renderFailed(c, "preview", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func (h *Handler) renderHTML(c *gin.Context) {
	doc, sel, lang, ok := h.bindRender(c)
	if !ok {
		return
	}
	assets := h.assets(c.Request.Context(), middleware.UserIDFromContext(c), doc.PersonalInfo.ProfileImageRef, true)
	out, err := render.PrintHTML(doc, sel, lang, assets)
	if err != nil {
		renderFailed(c, "html", err)
		return
	}
	respond.Document(c, "text/html; charset=utf-8", "", out)
}

func (h *Handler) bindRender(c *gin.Context) (model.ResumeDocument, render.Selection, render.Language, bool) {
	var req renderRequest
	if !respond.BindJSON(c, &req) {
		return model.ResumeDocument{}, render.Selection{}, "", false
	}
	doc, ok := decodeResume(c, req.ResumeData)
	if !ok {
		return model.ResumeDocument{}, render.Selection{}, "", false
	}
	tmpl, color, err := normalizeSelection(Input{TemplateName: req.TemplateName, ThemeColor: req.ThemeColor})
	if err != nil {
		writeError(c, err)
		return model.ResumeDocument{}, render.Selection{}, "", false
	}
	lang := req.Language
	if q := c.Query("lang"); q != "" {
		lang = q
	}
	sel := render.Selection{Template: render.TemplateName(tmpl), ThemeColor: color}
	return doc.WithDerivedAge(h.Svc.now()), sel, h.language(lang), true
}

func (h *Handler) language(raw string) render.Language {
	if strings.TrimSpace(raw) == "" {
		return h.opts.DefaultLanguage
	}
	return render.ParseLanguage(raw)
}

// assets resolves a profile image ref into something a standalone document can embed.
// Absolute URLs pass through only when allowRemote is set, since they are fetched by
// whoever renders the document. Object keys must belong to ownerID and are inlined as
// a data URI. Failures render without the image.
func (h *Handler) assets(ctx context.Context, ownerID, ref string, allowRemote bool) render.Assets {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return render.Assets{}
	case strings.HasPrefix(ref, "data:image/"):
		return render.Assets{Image: template.URL(ref)}
	case strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "http://"):
		if !allowRemote {
			telemetry.Warn("resumes.image_skipped", map[string]any{"user_id": ownerID, "reason": "remote"})
			return render.Assets{}
		}
		return render.Assets{Image: template.URL(ref)}
	}

	key := object.CleanKey(ref)
	if key == "" || ownerID == "" || !object.OwnedBy(key, ownerID) || h.opts.Objects == nil {
		telemetry.Warn("resumes.image_skipped", map[string]any{"user_id": ownerID, "reason": "not_owned"})
		return render.Assets{}
	}
	rc, info, err := h.opts.Objects.Open(ctx, key)
	if err != nil {
		telemetry.Warn("resumes.image_skipped", map[string]any{"user_id": ownerID, "reason": "open", "error": err.Error()})
		return render.Assets{}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxInlineImage+1))
	if err != nil || len(data) > maxInlineImage {
		telemetry.Warn("resumes.image_skipped", map[string]any{"user_id": ownerID, "reason": "read"})
		return render.Assets{}
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		telemetry.Warn("resumes.image_skipped", map[string]any{"user_id": ownerID, "reason": "content_type"})
		return render.Assets{}
	}
	uri := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return render.Assets{Image: template.URL(uri)}
}

func renderFailed(c *gin.Context, surface string, err error) {
	telemetry.Error("resumes.render_failed", map[string]any{"surface": surface, "error": err.Error()})
	respond.Error(c, http.StatusInternalServerError, "render_failed", "could not render resume", nil)
}
