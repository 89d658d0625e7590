package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/brunobiangulo/esgevidence"
)

const (
	secBase     = "https://data.sec.gov"
	secArchives = "https://www.sec.gov/Archives/edgar"
)

var cikPattern = regexp.MustCompile(`^\d{1,10}$`)

// secEdgarProvider fetches 10-K filings from SEC EDGAR, porting the
// original_source SecEdgarClient (providers/sec_edgar.py) into the
// Acquirer's Provider shape: polite (UA + rate limit + robots), fail-closed
// on any HTTP error, no mocking.
type secEdgarProvider struct {
	cfg    esgevidence.Config
	client *http.Client
	limits *originLimiters
	robots *robotsCache

	cikMu    sync.Mutex
	cikCache map[string]string // ticker (upper) -> zero-padded CIK
}

// NewSECEdgarProvider constructs the SEC EDGAR provider. client should be a
// shared *http.Client; a zero-value client is used if nil.
func NewSECEdgarProvider(cfg esgevidence.Config, client *http.Client) Provider {
	if client == nil {
		client = &http.Client{}
	}
	return &secEdgarProvider{
		cfg:      cfg,
		client:   client,
		limits:   newOriginLimiters(cfg.SECRateLimit),
		robots:   newRobotsCache(client),
		cikCache: make(map[string]string),
	}
}

func (p *secEdgarProvider) Name() string { return "sec_edgar" }

// Acquire resolves org_id (treated as a ticker or numeric CIK) to a CIK,
// finds the 10-K filed in year, and downloads its primary document.
func (p *secEdgarProvider) Acquire(ctx context.Context, orgID string, year int, _ string, destDir string) (esgevidence.RawDocument, error) {
	if err := p.cfg.RequireUserAgent(); err != nil {
		return esgevidence.RawDocument{}, err
	}

	cik, err := p.resolveCIK(ctx, orgID)
	if err != nil {
		return esgevidence.RawDocument{}, err
	}

	filing, err := p.list10KFilings(ctx, cik, year)
	if err != nil {
		return esgevidence.RawDocument{}, err
	}

	if allowed, reason := p.robots.Allowed(ctx, p.cfg.UserAgent, filing.docURL); !allowed {
		return esgevidence.RawDocument{}, newAcquireError("robots_disallow", reason, esgevidence.ErrRobotsDisallow)
	}

	return p.downloadDocument(ctx, filing.docURL, destDir)
}

func (p *secEdgarProvider) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	return req, nil
}

func (p *secEdgarProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := p.limits.Wait(ctx, url); err != nil {
		return err
	}
	req, err := p.newRequest(ctx, url)
	if err != nil {
		return newAcquireError("transport_error", "building request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return newAcquireError("transport_error", fmt.Sprintf("sec_api_fetch_failed: %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 100))
		return newAcquireError("http_status_non_200",
			fmt.Sprintf("sec_api_error: %s status=%d text=%s", url, resp.StatusCode, string(body)), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newAcquireError("transport_error", fmt.Sprintf("decoding response from %s", url), err)
	}
	return nil
}

// resolveCIK caches ticker->CIK resolutions in memory for the process
// lifetime (spec SPEC_FULL §D "CIK ticker-resolution cache").
func (p *secEdgarProvider) resolveCIK(ctx context.Context, tickerOrCIK string) (string, error) {
	if cikPattern.MatchString(tickerOrCIK) {
		return fmt.Sprintf("%010s", tickerOrCIK), nil
	}

	upper := strings.ToUpper(tickerOrCIK)

	p.cikMu.Lock()
	if cik, ok := p.cikCache[upper]; ok {
		p.cikMu.Unlock()
		return cik, nil
	}
	p.cikMu.Unlock()

	var tickers map[string]struct {
		CikStr interface{} `json:"cik_str"`
		Ticker string      `json:"ticker"`
	}
	if err := p.getJSON(ctx, secBase+"/files/company_tickers.json", &tickers); err != nil {
		return "", err
	}

	for _, entry := range tickers {
		if strings.ToUpper(entry.Ticker) == upper {
			cik := zeroPadCIK(entry.CikStr)
			p.cikMu.Lock()
			p.cikCache[upper] = cik
			p.cikMu.Unlock()
			return cik, nil
		}
	}

	return "", newAcquireError("input_missing", fmt.Sprintf("ticker_not_found_in_sec_tickers: %s", tickerOrCIK), esgevidence.ErrTickerNotFound)
}

func zeroPadCIK(v interface{}) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%010s", t)
	case float64:
		return fmt.Sprintf("%010d", int64(t))
	default:
		return fmt.Sprintf("%010v", t)
	}
}

type secFiling struct {
	accession   string
	filingDate  string
	docURL      string
	primaryDoc  string
}

// list10KFilings filters the parallel-array submissions payload for
// form=="10-K" filed in the requested year, exactly as the original's
// list_10k_filings does.
func (p *secEdgarProvider) list10KFilings(ctx context.Context, cik string, year int) (secFiling, error) {
	url := fmt.Sprintf("%s/submissions/CIK%s.json", secBase, cik)

	var data struct {
		Filings struct {
			Recent struct {
				Form            []string `json:"form"`
				AccessionNumber []string `json:"accessionNumber"`
				FilingDate      []string `json:"filingDate"`
				PrimaryDocument []string `json:"primaryDocument"`
			} `json:"recent"`
		} `json:"filings"`
	}
	if err := p.getJSON(ctx, url, &data); err != nil {
		return secFiling{}, err
	}

	recent := data.Filings.Recent
	n := len(recent.Form)
	for i := 0; i < n && i < len(recent.AccessionNumber) && i < len(recent.FilingDate) && i < len(recent.PrimaryDocument); i++ {
		if recent.Form[i] != "10-K" {
			continue
		}
		parts := strings.SplitN(recent.FilingDate[i], "-", 2)
		filingYear, err := strconv.Atoi(parts[0])
		if err != nil || filingYear != year {
			continue
		}
		accession := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		docURL := fmt.Sprintf("%s/data/%s/%s/%s", secArchives, cik, accession, recent.PrimaryDocument[i])
		return secFiling{
			accession:  recent.AccessionNumber[i],
			filingDate: recent.FilingDate[i],
			docURL:     docURL,
			primaryDoc: recent.PrimaryDocument[i],
		}, nil
	}

	return secFiling{}, newAcquireError("input_missing",
		fmt.Sprintf("no_10k_found: cik=%s year=%d", cik, year), esgevidence.ErrNo10KFound)
}

func (p *secEdgarProvider) downloadDocument(ctx context.Context, url, destDir string) (esgevidence.RawDocument, error) {
	if err := p.limits.Wait(ctx, url); err != nil {
		return esgevidence.RawDocument{}, err
	}
	req, err := p.newRequest(ctx, url)
	if err != nil {
		return esgevidence.RawDocument{}, newAcquireError("transport_error", "building download request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return esgevidence.RawDocument{}, newAcquireError("transport_error", fmt.Sprintf("sec_doc_fetch_error: %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return esgevidence.RawDocument{}, newAcquireError("http_status_non_200",
			fmt.Sprintf("sec_doc_fetch_failed: %s status=%d", url, resp.StatusCode), nil)
	}

	filename := filenameFromURL(url)
	localPath, sha, size, err := streamToFile(destDir, filename, resp.Body)
	if err != nil {
		return esgevidence.RawDocument{}, newAcquireError("write_error", "writing downloaded document", err)
	}

	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return esgevidence.RawDocument{
		LocalPath:   localPath,
		SourceURL:   url,
		SHA256:      sha,
		Size:        size,
		FetchedAt:   nowOrFixed(p.cfg),
		Provider:    p.Name(),
		HTTPHeaders: headers,
	}, nil
}

func filenameFromURL(url string) string {
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return "document"
	}
	return url[idx+1:]
}
