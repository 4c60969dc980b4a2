package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/internal/extraction"
	"github.com/williampepple1/swimtimes/internal/logger"
	"github.com/williampepple1/swimtimes/internal/proxy"
	"github.com/williampepple1/swimtimes/pkg/models"
)

// BrowserNavigator drives one headless Chrome tab through the portal's search flow
type BrowserNavigator struct {
	Config *config.AppConfig
	Proxy  *proxy.Manager

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

// NewBrowserNavigator launches the browser. The session is reused for every
// athlete; each lookup starts from a fresh page load.
func NewBrowserNavigator(parent context.Context, cfg *config.AppConfig) (*BrowserNavigator, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.Browser.UserAgent),
	)
	if cfg.Browser.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.Browser.ExecPath))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	proxyManager := proxy.NewManager(&cfg.Proxies)
	proxyOpt, server, err := proxyManager.BrowserOption()
	if err != nil {
		return nil, fmt.Errorf("%w: proxy: %v", ErrBrowserStart, err)
	}
	if proxyOpt != nil {
		opts = append(opts, proxyOpt)
		logger.Info("Routing browser through proxy", logger.Fields{"proxy": server})
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// an empty Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	return &BrowserNavigator{
		Config: cfg,
		Proxy:  proxyManager,
		ctx:    browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		now: time.Now,
	}, nil
}

// Close shuts the browser down
func (n *BrowserNavigator) Close() {
	n.cancel()
}

// Lookup searches for athlete and returns the revealed results table.
// Wait timeouts become StatusTimeout. An empty search, a missing reveal control
// or an empty history become StatusNoResults. Only unexpected browser failures
// return an error.
func (n *BrowserNavigator) Lookup(ctx context.Context, athlete models.Athlete, index int) (models.TableResult, error) {
	if err := ctx.Err(); err != nil {
		return models.TableResult{Athlete: athlete, Status: models.StatusFailed}, err
	}

	p := n.Config.Portal
	fields := logger.Fields{"athlete": athlete.DisplayName(), "index": index}
	logger.Debug("Opening search page", fields)

	if err := n.run(p.NavigationTimeout, chromedp.Navigate(p.SearchURL)); err != nil {
		return n.fail(athlete, "search page", err)
	}

	openSearch := buttonWithText("", p.OpenSearchButton)
	if err := n.run(p.ElementTimeout,
		chromedp.WaitVisible(openSearch, chromedp.BySearch),
		chromedp.Click(openSearch, chromedp.BySearch),
	); err != nil {
		return n.fail(athlete, "search form", err)
	}

	if err := n.run(p.ElementTimeout,
		chromedp.WaitVisible(p.FirstNameInput, chromedp.ByQuery),
		chromedp.SendKeys(p.FirstNameInput, athlete.First, chromedp.ByQuery),
		chromedp.WaitVisible(p.LastNameInput, chromedp.ByQuery),
		chromedp.SendKeys(p.LastNameInput, athlete.Last+kb.Enter, chromedp.ByQuery),
	); err != nil {
		return n.fail(athlete, "name fields", err)
	}

	// a search with no match renders the empty-state text instead of rows
	matches := rowScope(p.SearchResultRows)
	empty := emptyState(p.NoResultsText)
	if err := n.run(p.ElementTimeout, chromedp.WaitVisible(anyOf(matches, empty), chromedp.BySearch)); err != nil {
		return n.fail(athlete, "search results", err)
	}

	found, err := n.present(matches, chromedp.BySearch)
	if err != nil {
		return n.fail(athlete, "search results", err)
	}
	if !found {
		logger.Info("No matching athlete", fields)
		n.snapshot(athlete, "no matching athlete")
		return noResults(athlete, "no matching athlete"), nil
	}

	reveal := buttonWithText(matches, p.RevealButtonText)
	found, err = n.present(reveal, chromedp.BySearch)
	if err != nil {
		return n.fail(athlete, "reveal control", err)
	}
	if !found {
		logger.Info("No reveal control found", fields)
		n.snapshot(athlete, "no reveal control")
		return noResults(athlete, "no reveal control"), nil
	}

	history := historyRows(p.ResultsTable)
	if err := n.run(p.ResultsTimeout,
		chromedp.Click(reveal, chromedp.BySearch),
		chromedp.WaitVisible(anyOf(history, empty), chromedp.BySearch),
	); err != nil {
		return n.fail(athlete, "results table", err)
	}

	found, err = n.present(history, chromedp.BySearch)
	if err != nil {
		return n.fail(athlete, "results table", err)
	}
	if !found {
		n.snapshot(athlete, "empty results table")
		return noResults(athlete, "empty results table"), nil
	}

	n.widenScope(history, fields)

	var html string
	if err := n.run(p.ElementTimeout, chromedp.OuterHTML(historyTable(history), &html, chromedp.BySearch)); err != nil {
		return n.fail(athlete, "results markup", err)
	}

	table, ok, err := extraction.ParseTable(html, p.ResultsTable)
	if err != nil {
		return models.TableResult{Athlete: athlete, Status: models.StatusFailed}, err
	}
	if !ok {
		n.snapshot(athlete, "no results table")
		return noResults(athlete, "no results table"), nil
	}

	return models.TableResult{Athlete: athlete, Status: models.StatusFound, Table: table}, nil
}

// widenScope switches the results scope selector to all time when the page has one.
// Failures leave the default scope in place.
func (n *BrowserNavigator) widenScope(history string, fields logger.Fields) {
	p := n.Config.Portal
	if p.ScopeSelector == "" {
		return
	}

	present, err := n.present(p.ScopeSelector, chromedp.ByQuery)
	if err != nil || !present {
		logger.Debug("Scope selector not available", fields)
		return
	}

	var changed bool
	if err := n.run(p.ElementTimeout, chromedp.Evaluate(scopeScript(p.ScopeSelector, p.ScopeValue), &changed)); err != nil {
		logger.Warn("Could not widen results scope", withErr(fields, err))
		return
	}
	if !changed {
		logger.Debug("Scope already widest or option missing", fields)
		return
	}

	if err := n.run(p.ResultsTimeout, chromedp.WaitVisible(history, chromedp.BySearch)); err != nil {
		logger.Warn("Results table slow to refresh after scope change", withErr(fields, err))
	}
}

// run executes actions on the shared tab under a per-wait deadline
func (n *BrowserNavigator) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(n.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// present reports whether sel matches at least one node, without waiting for one
func (n *BrowserNavigator) present(sel string, opts ...chromedp.QueryOption) (bool, error) {
	var nodes []*cdp.Node
	opts = append(opts, chromedp.AtLeast(0))
	if err := n.run(n.Config.Portal.ElementTimeout, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

// fail converts a step error into an outcome; timeouts are not errors
func (n *BrowserNavigator) fail(athlete models.Athlete, step string, err error) (models.TableResult, error) {
	if isTimeout(err) {
		n.snapshot(athlete, "timeout: "+step)
		return timedOut(athlete, step), nil
	}
	return models.TableResult{Athlete: athlete, Status: models.StatusFailed, Reason: step}, fmt.Errorf("%s: %w", step, err)
}

// snapshot saves a screenshot of the current page for debugging, best-effort
func (n *BrowserNavigator) snapshot(athlete models.Athlete, reason string) {
	if !n.Config.Browser.Diagnostics {
		return
	}

	var buf []byte
	if err := n.run(n.Config.Portal.ElementTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		logger.Debug("Diagnostic screenshot failed", logger.Fields{"athlete": athlete.DisplayName(), "error": err.Error()})
		return
	}

	dir := n.Config.Browser.DiagnosticsDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	path := filepath.Join(dir, DiagnosticFilename(athlete, n.now()))
	if err := os.WriteFile(path, buf, 0644); err != nil {
		logger.Debug("Writing diagnostic screenshot failed", logger.Fields{"path": path, "error": err.Error()})
		return
	}
	logger.Info("Saved diagnostic screenshot", logger.Fields{"athlete": athlete.DisplayName(), "reason": reason, "path": path})
}

// DiagnosticFilename names a screenshot by surname and capture time
func DiagnosticFilename(athlete models.Athlete, at time.Time) string {
	surname := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, athlete.Last)
	if surname == "" {
		surname = "unknown"
	}
	return fmt.Sprintf("%s_%s.png", surname, at.Format("20060102_150405"))
}

// rowScope turns a descendant CSS selector such as "table.results tbody tr"
// into an XPath prefix. Each step may carry one #id and any number of .class parts.
func rowScope(css string) string {
	var b strings.Builder
	for _, part := range strings.Fields(css) {
		b.WriteString("//")
		b.WriteString(xpathStep(part))
	}
	return b.String()
}

func xpathStep(part string) string {
	cut := strings.IndexAny(part, ".#")
	if cut < 0 {
		return part
	}
	tag := part[:cut]
	if tag == "" {
		tag = "*"
	}

	var preds strings.Builder
	rest := part[cut:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			continue
		}
		if kind == '#' {
			fmt.Fprintf(&preds, "[@id=%s]", xpathLiteral(name))
		} else {
			fmt.Fprintf(&preds, "[contains(concat(' ', normalize-space(@class), ' '), %s)]", xpathLiteral(" "+name+" "))
		}
	}
	return tag + preds.String()
}

// historyRows matches result rows under the results table. The search listing
// can stay mounted after the reveal click; its rows have fewer cells than a
// result row, so the cell count tells the two apart.
func historyRows(table string) string {
	return fmt.Sprintf("%s//tbody//tr[count(td) >= %d]", rowScope(table), extraction.MinColumns)
}

// historyTable is the nearest table enclosing the first history row
func historyTable(history string) string {
	return fmt.Sprintf("(%s)[1]/ancestor::table[1]", history)
}

// emptyState matches an element whose own text contains the portal's empty-state message
func emptyState(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return fmt.Sprintf("//*[text()[contains(normalize-space(.), %s)]]", xpathLiteral(text))
}

// anyOf unions XPath expressions, skipping empty ones
func anyOf(paths ...string) string {
	var kept []string
	for _, p := range paths {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}

// buttonWithText is an XPath matching buttons under scope whose text contains text
func buttonWithText(scope, text string) string {
	return fmt.Sprintf("%s//button[contains(normalize-space(.), %s)]", scope, xpathLiteral(text))
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+part+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// scopeScript selects the option whose label or value equals want and fires change.
// It evaluates to true only when the selection actually changed.
func scopeScript(selector, want string) string {
	sel, _ := json.Marshal(selector)
	val, _ := json.Marshal(want)
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el || !el.options) return false;
	const opt = Array.from(el.options).find(o => o.text.trim() === %s || o.value === %s);
	if (!opt || el.value === opt.value) return false;
	el.value = opt.value;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()`, sel, val, val)
}

func withErr(fields logger.Fields, err error) logger.Fields {
	out := logger.Fields{"error": err.Error()}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
