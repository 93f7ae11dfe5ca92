package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-builder/resume/model"
)

// ErrPDFUnavailable is returned when no browser is configured for PDF output.
var ErrPDFUnavailable = errors.New("pdf renderer unavailable")

// PDFRenderer prints HTML to PDF.
type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromePDF drives a headless Chrome through chromedp.
type ChromePDF struct {
	ExecPath string
	Timeout  time.Duration
}

func NewChromePDF(execPath string) *ChromePDF {
	return &ChromePDF{ExecPath: execPath, Timeout: 60 * time.Second}
}

func (r *ChromePDF) RenderHTMLToPDF(ctx context.Context, html []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(cctx, timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-pdf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)
	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return nil, err
	}

	// Every request pauses here; only the local page and inline data may load.
	chromedp.ListenTarget(runCtx, func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			exec := cdp.WithExecutor(runCtx, chromedp.FromContext(runCtx).Target)
			if localRequest(paused.Request.URL) {
				_ = fetch.ContinueRequest(paused.RequestID).Do(exec)
				return
			}
			_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(exec)
		}()
	})

	var pdf []byte
	err = chromedp.Run(runCtx,
		fetch.Enable(),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

func localRequest(rawURL string) bool {
	return strings.HasPrefix(rawURL, "file://") || strings.HasPrefix(rawURL, "data:")
}

// PDF renders the print surface and prints it. A nil renderer yields ErrPDFUnavailable.
func PDF(ctx context.Context, r PDFRenderer, doc model.ResumeDocument, sel Selection, lang Language, assets Assets) ([]byte, error) {
	if r == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := PrintHTML(doc, sel, lang, assets)
	if err != nil {
		return nil, err
	}
	return r.RenderHTMLToPDF(ctx, html)
}
