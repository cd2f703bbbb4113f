package photos

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"gymkiosk/internal/apperr"
)

// Cloudinary stores photos through Cloudinary's signed upload API.
// Objects are addressed by public id <Folder>/<key>.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	APIBase   string
	HTTP      *http.Client
	now       func() time.Time
}

// NewCloudinary creates a Cloudinary-backed store.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) *Cloudinary {
	return &Cloudinary{
		CloudName: cloudName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Folder:    folder,
		APIBase:   "https://api.cloudinary.com/v1_1",
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

type cloudinaryResource struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Result    string `json:"result"`
}

func (c *Cloudinary) publicID(key string) string {
	if c.Folder == "" {
		return key
	}
	return c.Folder + "/" + key
}

// URL looks the resource up through the Admin API and returns its secure URL.
func (c *Cloudinary) URL(ctx context.Context, key string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/resources/image/upload/%s", c.APIBase, c.CloudName, c.publicID(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.SetBasicAuth(c.APIKey, c.APISecret)

	var res cloudinaryResource
	if err := c.do(req, key, &res); err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

// Put uploads data under the member's public id, replacing any previous version.
func (c *Cloudinary) Put(ctx context.Context, key string, data []byte, contentType string) error {
	params := c.signed(map[string]string{
		"public_id":  c.publicID(key),
		"overwrite":  "true",
		"invalidate": "true",
	})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("file", key+extension(contentType))
	if err != nil {
		return fmt.Errorf("cloudinary: create form file failed: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("cloudinary: write file failed: %w", err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload"), &buf)
	if err != nil {
		return fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res cloudinaryResource
	return c.do(req, key, &res)
}

// Delete destroys the member's photo. A missing photo yields apperr.ErrNotFound.
func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	params := c.signed(map[string]string{"public_id": c.publicID(key), "invalidate": "true"})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("destroy"), &buf)
	if err != nil {
		return fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res cloudinaryResource
	if err := c.do(req, key, &res); err != nil {
		return err
	}
	if res.Result == "not found" {
		return fmt.Errorf("photo %s: %w", key, apperr.ErrNotFound)
	}
	return nil
}

func (c *Cloudinary) endpoint(action string) string {
	return fmt.Sprintf("%s/%s/image/%s", c.APIBase, c.CloudName, action)
}

func (c *Cloudinary) do(req *http.Request, key string, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("photo %s: %w", key, apperr.ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary: %s failed (%d): %s", req.URL.Path, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cloudinary: decode response failed: %w", err)
	}
	return nil
}

// signed adds timestamp, api_key and signature to params.
func (c *Cloudinary) signed(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)
	params["signature"] = c.sign(params)
	params["api_key"] = c.APIKey
	return params
}

// sign computes the API signature: sorted k=v pairs joined by & plus the secret, SHA-1.
// api_key, file and resource_type are never signed.
func (c *Cloudinary) sign(params map[string]string) string {
	excludeKeys := map[string]bool{"api_key": true, "file": true, "resource_type": true}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if !excludeKeys[k] && v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	h := sha1.New()
	h.Write([]byte(strings.Join(pairs, "&") + c.APISecret))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
