// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// Device endpoints.
const (
	PathRename = "/api/rename"
	PathDelete = "/api/delete"
	PathExport = "/api/logs/csv"
)

// Operation names used in errors, logs and metrics.
const (
	OpRename = "rename"
	OpDelete = "delete"
	OpExport = "export"
)

// Target identifies a user row. Index is the row position at submission
// time; UID lets the device resolve the row if the list moved since.
type Target struct {
	Index int
	UID   string
}

// Observer is notified of every finished call. It may be nil.
type Observer interface {
	CommandFinished(op string, err error)
}

// Config holds configuration options for the command client.
type Config struct {
	// BaseURL is the device's HTTP root, e.g. http://192.168.4.1
	BaseURL string

	// Timeout bounds each call (0 = no client-imposed timeout).
	Timeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client

	Observer  Observer
	SessionID string
}

// Client sends mutations to the device. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a command client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc}
}

// NormalizeName trims surrounding whitespace and applies NFC so that the
// length limit counts what the operator sees.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName checks a rename value after normalization.
func ValidateName(name string) error {
	name = NormalizeName(name)
	if name == "" {
		return &Error{Kind: KindValidation, Op: OpRename, Message: "name must not be empty", Cause: ErrEmptyName}
	}
	if n := util.RuneLen(name); n > model.MaxNameLength {
		return &Error{
			Kind:    KindValidation,
			Op:      OpRename,
			Message: fmt.Sprintf("name has %d characters, limit is %d", n, model.MaxNameLength),
			Cause:   ErrNameTooLong,
		}
	}
	return nil
}

// Rename asks the device to rename the user at target.
func (c *Client) Rename(ctx context.Context, target Target, name string) error {
	if err := ValidateName(name); err != nil {
		c.finished(OpRename, err)
		return err
	}
	if err := validateTarget(OpRename, target); err != nil {
		c.finished(OpRename, err)
		return err
	}
	form := targetForm(target)
	form.Set("name", NormalizeName(name))
	err := c.post(ctx, OpRename, PathRename, form)
	c.finished(OpRename, err)
	return err
}

// Delete asks the device to remove the user at target. Confirmation is
// the caller's job.
func (c *Client) Delete(ctx context.Context, target Target) error {
	if err := validateTarget(OpDelete, target); err != nil {
		c.finished(OpDelete, err)
		return err
	}
	err := c.post(ctx, OpDelete, PathDelete, targetForm(target))
	c.finished(OpDelete, err)
	return err
}

// ExportURL returns the address of the CSV attendance export.
func (c *Client) ExportURL() string {
	return c.cfg.BaseURL + PathExport
}

// DownloadExport streams the CSV export into w and returns the byte count.
// The content is not parsed.
func (c *Client) DownloadExport(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(), nil)
	if err != nil {
		return 0, &Error{Kind: KindValidation, Op: OpExport, Message: "invalid device address", Cause: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		err = &Error{Kind: KindNetwork, Op: OpExport, Message: "device unreachable", Cause: err}
		c.finished(OpExport, err)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &Error{Kind: KindBadResponse, Op: OpExport, Message: "unexpected status " + resp.Status}
		c.finished(OpExport, err)
		return 0, err
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		err = &Error{Kind: KindNetwork, Op: OpExport, Message: "download interrupted", Cause: err}
	}
	c.finished(OpExport, err)
	return n, err
}

type ackResponse struct {
	OK *bool `json:"ok"`
}

func (c *Client) post(ctx context.Context, op, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: "invalid device address", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: "device unreachable", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: "reply interrupted", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindBadResponse, Op: op, Message: "unexpected status " + resp.Status}
	}

	var ack ackResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return &Error{Kind: KindBadResponse, Op: op, Message: "undecodable reply", Cause: err}
	}
	if ack.OK == nil {
		return &Error{Kind: KindBadResponse, Op: op, Message: "reply has no ok field"}
	}
	if !*ack.OK {
		return &Error{Kind: KindRejected, Op: op, Message: "device refused the request"}
	}
	return nil
}

func (c *Client) finished(op string, err error) {
	if err != nil {
		log.Printf("COMMAND_FAILED | session=%s op=%s kind=%s error=%v", c.cfg.SessionID, op, KindOf(err), err)
	} else {
		log.Printf("COMMAND_OK | session=%s op=%s", c.cfg.SessionID, op)
	}
	if c.cfg.Observer != nil {
		c.cfg.Observer.CommandFinished(op, err)
	}
}

func validateTarget(op string, t Target) error {
	if t.Index < 0 {
		return &Error{Kind: KindValidation, Op: op, Message: "row index is negative", Cause: ErrNoTarget}
	}
	return nil
}

func targetForm(t Target) url.Values {
	form := url.Values{}
	form.Set("idx", strconv.Itoa(t.Index))
	if t.UID != "" {
		form.Set("uid", t.UID)
	}
	return form
}
