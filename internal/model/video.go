package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dekarrin/vadm/internal/serr"
)

// Status is the processing status of a video. Values other than the ones
// declared here are kept exactly as the server sent them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

func (s Status) String() string {
	return string(s)
}

// Video is the normalized admin read-model of a processed video. Every field
// has a value; see DecodeVideo for the defaults.
type Video struct {
	ID         string
	Title      string
	Duration   float64
	Status     Status
	URL        string
	Thumbnail  string
	UploadDate time.Time
	Resolution string
	FPS        float64
	FileSize   int64
	Tags       []string
	UserID     string
}

// ReportReady returns whether a report can be downloaded for the video.
func (v Video) ReportReady() bool {
	return v.Status == StatusCompleted
}

// Raw video payload keys.
const (
	rawID          = "id"
	rawTitle       = "original_filename"
	rawDuration    = "duration"
	rawStatus      = "status"
	rawURL         = "storage_path"
	rawThumbnail   = "thumbnail_url"
	rawUploadedAt  = "uploaded_at"
	rawResolution  = "resolution"
	rawFPS         = "fps"
	rawFileSize    = "file_size"
	rawTags        = "tags"
	rawUserID      = "user_id"
	unknownResText = "Unknown"
)

// RawVideo is a single undecoded video record from the dashboard API.
type RawVideo map[string]json.RawMessage

// DecodeOptions control the defaults DecodeVideo fills in.
type DecodeOptions struct {
	// Untitled is the title given to videos with no original filename.
	Untitled string

	// Now gives the upload date used for videos without a usable one. If nil,
	// time.Now is used.
	Now func() time.Time
}

// uploadLayouts are tried in order when parsing uploaded_at.
var uploadLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeVideo turns a raw record into a Video. Absent, null, zero, empty or
// wrongly-typed fields are replaced with defaults: title with opts.Untitled,
// duration/fps/fileSize with 0, status with "pending", url/thumbnail/userId
// with "", resolution with "Unknown", tags with an empty list and the upload
// date with the current time. The names of the raw keys that were defaulted
// are returned so callers can report them.
//
// A record without a usable id cannot be displayed or acted on, so it is
// rejected with an error that matches serr.ErrBodyUnmarshal.
func DecodeVideo(raw RawVideo, opts DecodeOptions) (Video, []string, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	id, ok := rawIdentifier(raw[rawID])
	if !ok {
		return Video{}, nil, serr.New("video record has no usable id", serr.ErrBodyUnmarshal)
	}

	var defaulted []string
	def := func(key string) {
		defaulted = append(defaulted, key)
	}

	v := Video{ID: id}

	if v.Title, ok = rawString(raw[rawTitle]); !ok {
		v.Title = opts.Untitled
		def(rawTitle)
	}
	if v.Duration, ok = rawNumber(raw[rawDuration]); !ok {
		def(rawDuration)
	}
	status, ok := rawString(raw[rawStatus])
	if !ok {
		status = StatusPending.String()
		def(rawStatus)
	}
	v.Status = Status(status)
	if v.URL, ok = rawString(raw[rawURL]); !ok {
		def(rawURL)
	}
	if v.Thumbnail, ok = rawString(raw[rawThumbnail]); !ok {
		def(rawThumbnail)
	}
	if v.UploadDate, ok = rawTime(raw[rawUploadedAt]); !ok {
		v.UploadDate = now()
		def(rawUploadedAt)
	}
	if v.Resolution, ok = rawString(raw[rawResolution]); !ok {
		v.Resolution = unknownResText
		def(rawResolution)
	}
	if v.FPS, ok = rawNumber(raw[rawFPS]); !ok {
		def(rawFPS)
	}
	size, ok := rawNumber(raw[rawFileSize])
	if !ok {
		def(rawFileSize)
	}
	v.FileSize = int64(size)
	if v.Tags, ok = rawStrings(raw[rawTags]); !ok {
		v.Tags = []string{}
		def(rawTags)
	}
	if v.UserID, ok = rawIdentifier(raw[rawUserID]); !ok {
		def(rawUserID)
	}

	return v, defaulted, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// rawString decodes a non-empty JSON string.
func rawString(data json.RawMessage) (string, bool) {
	if isNull(data) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// rawIdentifier decodes an id that may be sent as a JSON string or number.
func rawIdentifier(data json.RawMessage) (string, bool) {
	if s, ok := rawString(data); ok {
		return s, true
	}
	if isNull(data) {
		return "", false
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil || n.String() == "0" {
		return "", false
	}
	return n.String(), true
}

// rawNumber decodes a non-zero JSON number.
func rawNumber(data json.RawMessage) (float64, bool) {
	if isNull(data) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil || f == 0 {
		return 0, false
	}
	return f, true
}

// rawStrings decodes a JSON array of strings. An empty array is valid.
func rawStrings(data json.RawMessage) ([]string, bool) {
	if isNull(data) {
		return nil, false
	}
	var ss []string
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, false
	}
	if ss == nil {
		ss = []string{}
	}
	return ss, true
}

// rawTime decodes a timestamp given either as a string in one of the known
// layouts or as a number of milliseconds since the Unix epoch.
func rawTime(data json.RawMessage) (time.Time, bool) {
	if s, ok := rawString(data); ok {
		s = strings.TrimSpace(s)
		for _, layout := range uploadLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms != 0 {
			return time.UnixMilli(ms), true
		}
		return time.Time{}, false
	}
	if ms, ok := rawNumber(data); ok {
		return time.UnixMilli(int64(ms)), true
	}
	return time.Time{}, false
}

// HistoryVideo is the minimal projection of a video shown in the history
// sidebar.
type HistoryVideo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UploadDate time.Time `json:"upload_date"`
}
