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
	"golang.org/x/oauth2/microsoft"

	"syncme/core/config"
	"syncme/core/constants"
	"syncme/core/logger"
	"syncme/modules/calendar/repository"
	"syncme/modules/scheduling/entity"
)

const graphAPIBase = "https://graph.microsoft.com/v1.0"

// graphTimeFormat is what Graph emits for dateTime fields: no zone suffix,
// the zone arrives in a sibling timeZone field.
const graphTimeFormat = "2006-01-02T15:04:05.9999999"

type OutlookProvider struct {
	repo    repository.CalendarRepositoryInterface
	cfg     config.MicrosoftAPIConfig
	client  *http.Client
	backoff BackoffConfig
	tokens  *tokenCache
	baseURL string
}

func NewOutlookProvider(repo repository.CalendarRepositoryInterface, cfg config.MicrosoftAPIConfig, backoff BackoffConfig) *OutlookProvider {
	return &OutlookProvider{
		repo:    repo,
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		backoff: backoff,
		tokens:  newTokenCache(nil),
		baseURL: graphAPIBase,
	}
}

func (p *OutlookProvider) Name() string {
	return constants.ProviderOutlook
}

func (p *OutlookProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     microsoft.AzureADEndpoint(p.cfg.TenantID),
	}
}

func (p *OutlookProvider) ensureValidToken(ctx context.Context, userID string) (string, error) {
	if tok, ok := p.tokens.get(userID); ok {
		return tok, nil
	}

	conn, err := p.repo.GetConnectionByUserAndProvider(ctx, userID, constants.ProviderOutlook)
	if err != nil {
		return "", fmt.Errorf("load outlook connection: %w", err)
	}
	if conn == nil {
		return "", fmt.Errorf("user %s has no active outlook connection", userID)
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
		return "", fmt.Errorf("refresh outlook token: %w", err)
	}

	refreshToken := fresh.RefreshToken
	if refreshToken == "" {
		refreshToken = conn.RefreshToken
	}
	if err := p.repo.UpdateConnectionTokens(ctx, conn.ID, fresh.AccessToken, refreshToken, fresh.Expiry); err != nil {
		logger.Warn("OutlookProvider:EnsureValidToken:Persist", "error", err)
	}

	p.tokens.put(userID, fresh.AccessToken, fresh.Expiry)
	return fresh.AccessToken, nil
}

func (p *OutlookProvider) reauth(userID string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		p.tokens.drop(userID)
		_, err := p.ensureValidToken(ctx, userID)
		return err
	}
}

func (p *OutlookProvider) buildRequest(ctx context.Context, userID, method, url string, body []byte) func() (*http.Request, error) {
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

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (g graphDateTime) parse() (time.Time, error) {
	loc := time.UTC
	if g.TimeZone != "" && g.TimeZone != "UTC" {
		parsed, err := time.LoadLocation(g.TimeZone)
		if err == nil {
			loc = parsed
		}
	}
	t, err := time.ParseInLocation(graphTimeFormat, g.DateTime, loc)
	if err != nil {
		return time.ParseInLocation("2006-01-02T15:04:05", g.DateTime, loc)
	}
	return t, nil
}

type graphScheduleResponse struct {
	Value []struct {
		ScheduleItems []struct {
			Status string        `json:"status"`
			Start  graphDateTime `json:"start"`
			End    graphDateTime `json:"end"`
		} `json:"scheduleItems"`
	} `json:"value"`
}

func (p *OutlookProvider) GetBusyIntervals(ctx context.Context, identity string, start, end time.Time) ([]entity.BusyInterval, error) {
	conn, err := p.repo.GetConnectionByUserAndProvider(ctx, identity, constants.ProviderOutlook)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("user %s has no active outlook connection", identity)
	}

	body, err := json.Marshal(map[string]any{
		"schedules": []string{conn.CalendarEmail},
		"startTime": map[string]string{
			"dateTime": start.UTC().Format("2006-01-02T15:04:05"),
			"timeZone": "UTC",
		},
		"endTime": map[string]string{
			"dateTime": end.UTC().Format("2006-01-02T15:04:05"),
			"timeZone": "UTC",
		},
		"availabilityViewInterval": 30,
	})
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodPost, p.baseURL+"/me/calendar/getSchedule", body),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph getSchedule returned %d", resp.StatusCode)
	}

	var sched graphScheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&sched); err != nil {
		return nil, fmt.Errorf("decode getSchedule response: %w", err)
	}

	var intervals []entity.BusyInterval
	for _, schedule := range sched.Value {
		for _, item := range schedule.ScheduleItems {
			// free and tentative items do not block
			if item.Status != "busy" && item.Status != "oof" {
				continue
			}
			s, err := item.Start.parse()
			if err != nil {
				continue
			}
			e, err := item.End.parse()
			if err != nil {
				continue
			}
			intervals = append(intervals, entity.BusyInterval{
				Start:  s,
				End:    e,
				Status: entity.StatusScheduled,
			})
		}
	}
	return intervals, nil
}

type graphEvent struct {
	ID        string        `json:"id"`
	Subject   string        `json:"subject"`
	Body      struct {
		Content string `json:"content"`
	} `json:"body"`
	Location struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	IsCancelled bool          `json:"isCancelled"`
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
	Attendees   []struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"attendees"`
}

func (e *graphEvent) toEntity() (*entity.Event, error) {
	start, err := e.Start.parse()
	if err != nil {
		return nil, err
	}
	end, err := e.End.parse()
	if err != nil {
		return nil, err
	}

	status := entity.StatusScheduled
	if e.IsCancelled {
		status = entity.StatusCancelled
	}

	attendees := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		attendees = append(attendees, a.EmailAddress.Address)
	}

	return &entity.Event{
		ID:          e.ID,
		Title:       e.Subject,
		Description: e.Body.Content,
		Location:    e.Location.DisplayName,
		Attendees:   attendees,
		Provider:    constants.ProviderOutlook,
		Status:      status,
		Start:       start,
		End:         end,
	}, nil
}

func (p *OutlookProvider) eventPayload(title, description, location string, attendees []string, start, end *time.Time, timezone string) map[string]any {
	if timezone == "" {
		timezone = "UTC"
	}
	payload := map[string]any{}
	if title != "" {
		payload["subject"] = title
	}
	if description != "" {
		payload["body"] = map[string]string{"contentType": "text", "content": description}
	}
	if location != "" {
		payload["location"] = map[string]string{"displayName": location}
	}
	if start != nil {
		payload["start"] = map[string]string{
			"dateTime": start.Format("2006-01-02T15:04:05"),
			"timeZone": timezone,
		}
	}
	if end != nil {
		payload["end"] = map[string]string{
			"dateTime": end.Format("2006-01-02T15:04:05"),
			"timeZone": timezone,
		}
	}
	if attendees != nil {
		list := make([]map[string]any, 0, len(attendees))
		for _, email := range attendees {
			list = append(list, map[string]any{
				"emailAddress": map[string]string{"address": email},
				"type":         "required",
			})
		}
		payload["attendees"] = list
	}
	return payload
}

func (p *OutlookProvider) CreateEvent(ctx context.Context, identity string, spec *entity.EventSpec) (*entity.Event, error) {
	payload := p.eventPayload(spec.Title, spec.Description, spec.Location, spec.Attendees, &spec.Start, &spec.End, spec.Timezone)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodPost, p.baseURL+"/me/events", body),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph event create returned %d", resp.StatusCode)
	}

	var ev graphEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode created event: %w", err)
	}
	return ev.toEntity()
}

func (p *OutlookProvider) UpdateEvent(ctx context.Context, identity, eventID string, changes *entity.EventChanges) (*entity.Event, error) {
	var title, description, location string
	if changes.Title != nil {
		title = *changes.Title
	}
	if changes.Description != nil {
		description = *changes.Description
	}
	if changes.Location != nil {
		location = *changes.Location
	}

	payload := p.eventPayload(title, description, location, changes.Attendees, changes.Start, changes.End, "")
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodPatch, p.baseURL+"/me/events/"+eventID, body),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("outlook event %s not found", eventID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph event update returned %d", resp.StatusCode)
	}

	var ev graphEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode updated event: %w", err)
	}
	return ev.toEntity()
}

func (p *OutlookProvider) CancelEvent(ctx context.Context, identity, eventID string) (bool, error) {
	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodDelete, p.baseURL+"/me/events/"+eventID, nil),
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
		return false, fmt.Errorf("graph event delete returned %d", resp.StatusCode)
	}
}

func (p *OutlookProvider) GetEvent(ctx context.Context, identity, eventID string) (*entity.Event, error) {
	resp, err := doWithRetry(ctx, p.client, p.backoff,
		p.buildRequest(ctx, identity, http.MethodGet, p.baseURL+"/me/events/"+eventID, nil),
		p.reauth(identity))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph event get returned %d", resp.StatusCode)
	}

	var ev graphEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return ev.toEntity()
}
