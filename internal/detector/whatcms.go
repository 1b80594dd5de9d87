package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/stackscan/internal/core"
)

// DefaultWhatCMSURL is the WhatCMS.org technology endpoint.
const DefaultWhatCMSURL = "https://whatcms.org/API/Tech"

// whatCMSConfidence applies to every API result. The service only reports
// technologies it has verified, so detections start high and the merge
// engine handles disagreement with local sources.
const whatCMSConfidence = 95

// WhatCMSDetector queries the WhatCMS.org cloud API.
type WhatCMSDetector struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewWhatCMSDetector builds the cloud detector. The API key is required;
// callers should not register this detector without one.
func NewWhatCMSDetector(apiKey, apiURL string, client *http.Client) (*WhatCMSDetector, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("whatcms API key not configured")
	}
	if apiURL == "" {
		apiURL = DefaultWhatCMSURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WhatCMSDetector{apiKey: apiKey, apiURL: apiURL, client: client}, nil
}

// Name implements Detector.
func (d *WhatCMSDetector) Name() string { return "whatcms" }

type whatCMSResponse struct {
	Result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"result"`
	Results []struct {
		Name       string   `json:"name"`
		Version    string   `json:"version"`
		Categories []string `json:"categories"`
		ID         string   `json:"id"`
		URL        string   `json:"url"`
	} `json:"results"`
}

// Detect queries the API for the target host.
func (d *WhatCMSDetector) Detect(ctx context.Context, target Target) ([]core.RawDetection, error) {
	host := strings.TrimPrefix(strings.TrimPrefix(target.URL, "https://"), "http://")

	endpoint := fmt.Sprintf("%s?%s", d.apiURL, url.Values{
		"key": {d.apiKey},
		"url": {host},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatcms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whatcms request failed with status %d", resp.StatusCode)
	}

	var payload whatCMSResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode whatcms response: %w", err)
	}
	if payload.Result.Code != 200 {
		return nil, fmt.Errorf("whatcms API error %d: %s", payload.Result.Code, payload.Result.Msg)
	}

	var detections []core.RawDetection
	for _, tech := range payload.Results {
		det := core.RawDetection{
			Name:       tech.Name,
			Confidence: whatCMSConfidence,
			Category:   primaryCategory(tech.Categories),
			Source:     d.Name(),
			Evidence: []core.EvidenceItem{{
				Field:      "whatcms_api",
				Detail:     fmt.Sprintf("API ID: %s", tech.ID),
				Match:      tech.Name,
				Confidence: whatCMSConfidence,
			}},
		}
		if tech.URL != "" {
			det.Website = "https://whatcms.org" + tech.URL
		}
		if tech.Version != "" {
			det.Versions = []string{tech.Version}
		}
		detections = append(detections, det)
	}
	return detections, nil
}

// primaryCategory picks one category from the API's list. CMS and language
// labels carry the most signal, so they win over generic ones.
func primaryCategory(categories []string) string {
	if len(categories) == 0 {
		return "Unknown"
	}
	for _, preferred := range []string{"CMS", "Programming Language", "Wiki"} {
		for _, c := range categories {
			if c == preferred {
				return c
			}
		}
	}
	return categories[0]
}
