package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"presensi-backend/internal/presensi"
)

// ServerError carries the server's own message so it can be shown verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string { return fmt.Sprintf("server %d: %s", e.Status, e.Message) }

// ErrNoConnection means no HTTP response was received at all.
var ErrNoConnection = errors.New(MsgNoConnection)

// UserMessage is the text to show for err.
func UserMessage(err error) string {
	var se *ServerError
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return se.Message
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNoConnection):
		return MsgNoConnection
	default:
		return err.Error()
	}
}

type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithToken(token string) Option         { return func(c *Client) { c.token = token } }

// NewClient talks to the server at baseURL (e.g. "http://localhost:3001").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }
func (c *Client) Token() string   { return c.token }

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login stores the token on success and returns it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "application/json", bytes.NewReader(body), false, &out); err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

func (c *Client) CheckIn(ctx context.Context, at Coords, p Photo) (presensi.MessageResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	_ = mw.WriteField("longitude", strconv.FormatFloat(at.Lng, 'f', -1, 64))

	ct := p.ContentType
	if ct == "" {
		ct = mimetype.Detect(p.Data).String()
	}
	name := p.Filename
	if name == "" {
		name = "selfie.jpeg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return presensi.MessageResponse{}, err
	}
	if _, err := part.Write(p.Data); err != nil {
		return presensi.MessageResponse{}, err
	}
	if err := mw.Close(); err != nil {
		return presensi.MessageResponse{}, err
	}

	var out presensi.MessageResponse
	err = c.do(ctx, http.MethodPost, "/api/presensi/check-in", mw.FormDataContentType(), &buf, true, &out)
	return out, err
}

func (c *Client) CheckOut(ctx context.Context) (presensi.MessageResponse, error) {
	var out presensi.MessageResponse
	err := c.do(ctx, http.MethodPost, "/api/presensi/check-out", "application/json", strings.NewReader("{}"), true, &out)
	return out, err
}

func (c *Client) Report(ctx context.Context, q presensi.ReportQuery) ([]presensi.PresensiResponse, error) {
	v := url.Values{}
	v.Set("nama", q.Nama)
	if q.TanggalMulai != "" {
		v.Set("tanggalMulai", q.TanggalMulai)
	}
	if q.TanggalSelesai != "" {
		v.Set("tanggalSelesai", q.TanggalSelesai)
	}
	var out []presensi.PresensiResponse
	err := c.do(ctx, http.MethodGet, "/api/presensi/report?"+v.Encode(), "", nil, true, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, authed bool, out any) error {
	if authed && c.token == "" {
		return &ValidationError{Message: MsgNotLoggedIn}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w (%v)", ErrNoConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w (%v)", ErrNoConnection, err)
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		msg := ""
		if json.Unmarshal(raw, &e) == nil {
			msg = e.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("Error %d", resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
