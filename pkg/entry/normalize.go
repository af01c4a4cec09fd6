package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// CanonicalTag returns the stored form of a tag: trimmed, without a leading
// '#', lower case. An empty result means the tag is dropped.
func CanonicalTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags canonicalizes tags, dropping empties and duplicates while
// keeping first-seen order. It returns nil when nothing survives.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := CanonicalTag(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ParseTags splits free text such as "#work, family  travel" into
// canonical tags.
func ParseTags(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return NormalizeTags(fields)
}

// Normalize returns a copy of e in canonical form.
func Normalize(e Entry) Entry {
	out := e.Clone()
	out.Date = strings.TrimSpace(out.Date)
	out.Time = strings.TrimSpace(out.Time)
	out.Title = strings.TrimSpace(out.Title)
	out.Content = strings.TrimSpace(out.Content)
	out.Mood = strings.TrimSpace(out.Mood)
	out.Tags = NormalizeTags(out.Tags)
	if len(out.Media) == 0 {
		out.Media = nil
	}
	return out
}

// document is the stored shape of an entry. Older documents keep the body in
// description, and tags may arrive as a list, a keyed object or a single
// free-text string.
type document struct {
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Description string          `json:"description"`
	Mood        string          `json:"mood"`
	Tags        json.RawMessage `json:"tags"`
	Media       json.RawMessage `json:"media"`
	Timestamp   *Timestamp      `json:"timestamp"`
	UpdatedAt   *Timestamp      `json:"updatedAt"`
}

// Decode builds an entry from a stored document. The identity always comes
// from the storage key, never from the body.
func Decode(date, time string, raw []byte) (Entry, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Entry{}, fmt.Errorf("entry %s/%s: %w", date, time, err)
	}
	tags, err := decodeList[string](doc.Tags)
	if err != nil {
		if s, ok := decodeString(doc.Tags); ok {
			tags = ParseTags(s)
		} else {
			return Entry{}, fmt.Errorf("entry %s/%s: tags: %w", date, time, err)
		}
	}
	media, err := decodeList[Media](doc.Media)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s/%s: media: %w", date, time, err)
	}
	content := doc.Content
	if content == "" {
		content = doc.Description
	}
	return Normalize(Entry{
		Date:      date,
		Time:      time,
		Title:     doc.Title,
		Content:   content,
		Mood:      doc.Mood,
		Tags:      tags,
		Media:     media,
		Timestamp: doc.Timestamp,
		UpdatedAt: doc.UpdatedAt,
	}), nil
}

// DecodeDay decodes the value stored at a day path, keyed by time.
func DecodeDay(date string, raw []byte) ([]Entry, error) {
	if isEmpty(raw) {
		return nil, nil
	}
	var day map[string]json.RawMessage
	if err := json.Unmarshal(raw, &day); err != nil {
		return nil, fmt.Errorf("day %s: %w", date, err)
	}
	entries := make([]Entry, 0, len(day))
	for t, doc := range day {
		if isEmpty(doc) {
			continue
		}
		e, err := Decode(date, t, doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	SortByTime(entries)
	return entries, nil
}

// DecodeTree decodes the value stored at the entries root, keyed by date
// then time.
func DecodeTree(raw []byte) (map[string][]Entry, error) {
	out := map[string][]Entry{}
	if isEmpty(raw) {
		return out, nil
	}
	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	for date, day := range days {
		entries, err := DecodeDay(date, day)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			out[date] = entries
		}
	}
	return out, nil
}

// Encode renders the stored document of e. Date and time are omitted; they
// are carried by the path.
func Encode(e Entry) ([]byte, error) {
	doc := e.Clone()
	doc.Date = ""
	doc.Time = ""
	return json.Marshal(doc)
}

func isEmpty(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeList accepts a JSON array or an object keyed by index, which is how
// sparse arrays come back from tree stores.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if isEmpty(raw) {
		return nil, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var keyed map[string]T
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		list = append(list, keyed[k])
	}
	return list, nil
}
