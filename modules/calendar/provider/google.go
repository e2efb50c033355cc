package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"syncme/core/config"
	"syncme/core/constants"
	"syncme/core/logger"
	"syncme/modules/calendar/repository"
	"syncme/modules/scheduling/entity"
)

const googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"

type GoogleProvider struct {
	repo    repository.CalendarRepositoryInterface
	cfg     config.GoogleAPIConfig
	client  *http.Client
	backoff BackoffConfig
	tokens  *tokenCache
	baseURL string
}

func NewGoogleProvider(repo repository.CalendarRepositoryInterface, cfg config.GoogleAPIConfig, backoff BackoffConfig) *GoogleProvider {
	return &GoogleProvider{
		repo:    repo,
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		backoff: backoff,
		tokens:  newTokenCache(nil),
		baseURL: googleCalendarAPIBase,
	}
}

func (p *GoogleProvider) freeBusyURL() string {
	return p.baseURL + "/freeBusy"
}

func (p *GoogleProvider) eventsURL() string {
	return p.baseURL + "/calendars/primary/events"
}

func (p *GoogleProvider) Name() string {
	return constants.ProviderGoogle
}

func (p *GoogleProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  p.cfg.RedirectURL,
		Endpoint:     googleoauth.Endpoint,
	}
}

// ensureValidToken returns a usable access token for the user, refreshing
// through the oauth2 token source when the stored one is near expiry.
func (p *GoogleProvider) ensureValidToken(ctx context.Context, userID string) (string, error) {
	if tok, ok := p.tokens.get(userID); ok {
		return tok, nil
	}

	conn, err := p.repo.GetConnectionByUserAndProvider(ctx, userID, constants.ProviderGoogle)
	if err != nil {
		return "", fmt.Errorf("load google connection: %w", err)
	}
	if conn == nil {
		return "", fmt.Errorf("user %s has no active google connection", userID)
	}

	if time.Now().Add(refreshSkew).Before(conn.TokenExpiresAt) {
		p.tokens.put(userID, conn.AccessToken, conn.TokenExpiresAt)
		return conn.AccessToken, nil
	}

	src := p.oauthConfig().TokenSource(ctx, &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiresAt,
	})
	fresh, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("refresh google token: %w", err)
	}

	refreshToken := fresh.RefreshToken
	if refreshToken == "" {
		refreshToken = conn.RefreshToken
	}
	if err := p.repo.UpdateConnectionTokens(ctx, conn.ID, fresh.AccessToken, refreshToken, fresh.Expiry); err != nil {
		logger.Warn("GoogleProvider:EnsureValidToken:Persist", "error", err)
	}

	p.tokens.put(userID, fresh.AccessToken, fresh.Expiry)
	return fresh.AccessToken, nil
}

func (p *GoogleProvider) reauth(userID string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		p.tokens.drop(userID)
		_, err := p.ensureValidToken(ctx, userID)
		return err
	}
}

func (p *GoogleProvider) buildRequest(ctx context.Context, userID, method, url string, body []byte) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		token, err := p.ensureValidToken(ctx, userID)
		if err != nil {
			return nil, err
		}
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}
}

type googleFreeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

func (p *GoogleProvider) GetBusyIntervals(ctx context.Context, identity string, start, end time.Time) ([]entity.BusyInterval, error) {
	body, err := json.Marshal(map[string]any{
		"timeMin": start.Format(time.RFC3339),
		"timeMax": end.Format(time.RFC3339),
		"items":   []map[string]string{{"id": "primary"}},
	})
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodPost, p.freeBusyURL(), body),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google freeBusy returned %d", resp.StatusCode)
	}

	var fb googleFreeBusyResponse
	if err := json.NewDecoder(resp.Body).Decode(&fb); err != nil {
		return nil, fmt.Errorf("decode freeBusy response: %w", err)
	}

	var intervals []entity.BusyInterval
	for _, cal := range fb.Calendars {
		for _, b := range cal.Busy {
			intervals = append(intervals, entity.BusyInterval{
				Start:  b.Start,
				End:    b.End,
				Status: entity.StatusScheduled,
			})
		}
	}
	return intervals, nil
}

type googleEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	Start       struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
	Attendees []struct {
		Email string `json:"email"`
	} `json:"attendees"`
}

func (e *googleEvent) toEntity() (*entity.Event, error) {
	start, err := parseGoogleTime(e.Start.DateTime, e.Start.Date)
	if err != nil {
		return nil, err
	}
	end, err := parseGoogleTime(e.End.DateTime, e.End.Date)
	if err != nil {
		return nil, err
	}

	status := entity.StatusScheduled
	if e.Status == "cancelled" {
		status = entity.StatusCancelled
	}

	attendees := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		attendees = append(attendees, a.Email)
	}

	return &entity.Event{
		ID:          e.ID,
		Title:       e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Attendees:   attendees,
		Provider:    constants.ProviderGoogle,
		Status:      status,
		Start:       start,
		End:         end,
	}, nil
}

// parseGoogleTime handles both timed events (dateTime) and all-day events
// (date only).
func parseGoogleTime(dateTime, date string) (time.Time, error) {
	if dateTime != "" {
		return time.Parse(time.RFC3339, dateTime)
	}
	if date != "" {
		return time.Parse("2006-01-02", date)
	}
	return time.Time{}, fmt.Errorf("google event has neither dateTime nor date")
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, identity string, spec *entity.EventSpec) (*entity.Event, error) {
	payload := map[string]any{
		"summary": spec.Title,
		"start":   map[string]string{"dateTime": spec.Start.Format(time.RFC3339), "timeZone": spec.Timezone},
		"end":     map[string]string{"dateTime": spec.End.Format(time.RFC3339), "timeZone": spec.Timezone},
	}
	if spec.Description != "" {
		payload["description"] = spec.Description
	}
	if spec.Location != "" {
		payload["location"] = spec.Location
	}
	if len(spec.Attendees) > 0 {
		attendees := make([]map[string]string, 0, len(spec.Attendees))
		for _, email := range spec.Attendees {
			attendees = append(attendees, map[string]string{"email": email})
		}
		payload["attendees"] = attendees
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodPost, p.eventsURL(), body),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google event create returned %d", resp.StatusCode)
	}

	var ev googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode created event: %w", err)
	}
	return ev.toEntity()
}

func (p *GoogleProvider) UpdateEvent(ctx context.Context, identity, eventID string, changes *entity.EventChanges) (*entity.Event, error) {
	payload := map[string]any{}
	if changes.Title != nil {
		payload["summary"] = *changes.Title
	}
	if changes.Description != nil {
		payload["description"] = *changes.Description
	}
	if changes.Location != nil {
		payload["location"] = *changes.Location
	}
	if changes.Start != nil {
		payload["start"] = map[string]string{"dateTime": changes.Start.Format(time.RFC3339)}
	}
	if changes.End != nil {
		payload["end"] = map[string]string{"dateTime": changes.End.Format(time.RFC3339)}
	}
	if changes.Attendees != nil {
		attendees := make([]map[string]string, 0, len(changes.Attendees))
		for _, email := range changes.Attendees {
			attendees = append(attendees, map[string]string{"email": email})
		}
		payload["attendees"] = attendees
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodPatch, p.eventsURL()+"/"+eventID, body),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("google event %s not found", eventID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google event update returned %d", resp.StatusCode)
	}

	var ev googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode updated event: %w", err)
	}
	return ev.toEntity()
}

func (p *GoogleProvider) CancelEvent(ctx context.Context, identity, eventID string) (bool, error) {
	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodDelete, p.eventsURL()+"/"+eventID, nil),
		p.reauth(identity))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("google event delete returned %d", resp.StatusCode)
	}
}

func (p *GoogleProvider) GetEvent(ctx context.Context, identity, eventID string) (*entity.Event, error) {
	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodGet, p.eventsURL()+"/"+eventID, nil),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google event get returned %d", resp.StatusCode)
	}

	var ev googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return ev.toEntity()
}
