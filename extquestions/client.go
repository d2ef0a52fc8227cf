package extquestions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	config "github.com/olusegunak/school_cbt/configs"
)

// ErrExternalSource wraps every failure of the external question bank:
// network errors, non-200 statuses and malformed payloads all surface as a
// single "could not load questions" condition to callers.
var ErrExternalSource = errors.New("external question source failed")

const defaultBaseURL = "https://questions.aloc.com.ng/api/v2/q"

// APIQuestion is one question as the bank serves it: options keyed a..e and
// the answer field naming the correct key.
type APIQuestion struct {
	ID       json.Number       `json:"id"`
	Question string            `json:"question"`
	Option   map[string]string `json:"option"`
	Answer   string            `json:"answer"`
	Year     string            `json:"year"`
	ExamType string            `json:"examtype"`
	Subject  string            `json:"subject"`
}

type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient() *Client {
	baseURL := config.ConfigOr("QUESTIONS_API_BASE_URL", defaultBaseURL)
	return &Client{
		baseURL: baseURL,
		token:   config.Config("QUESTIONS_API_TOKEN"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWith builds a client against an explicit endpoint, used by tests.
func NewClientWith(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// FetchQuestions pulls up to limit questions for a subject. The bank exposes
// a single-question endpoint at /q and a multi-question one at /m/<n>; limit
// > 1 selects the latter.
func (c *Client) FetchQuestions(subject, examType, year string, limit int) ([]APIQuestion, error) {
	apiURL := c.baseURL
	if limit > 1 {
		apiURL = strings.Replace(c.baseURL, "/q", "/m", 1) + "/" + strconv.Itoa(limit)
	}

	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSource, err)
	}

	q := req.URL.Query()
	q.Set("subject", subject)
	if examType != "" && examType != "utme" {
		q.Set("type", examType)
	}
	if year != "" {
		q.Set("year", year)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("AccessToken", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSource, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrExternalSource, resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSource, err)
	}

	questions, err := decodeQuestions(envelope.Data)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// decodeQuestions accepts both payload shapes: a list from /m and a single
// object from /q.
func decodeQuestions(raw json.RawMessage) ([]APIQuestion, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrExternalSource)
	}

	var many []APIQuestion
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}

	var one APIQuestion
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSource, err)
	}
	return []APIQuestion{one}, nil
}
