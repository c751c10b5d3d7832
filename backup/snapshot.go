// Package backup persists the in-memory state as a JSON snapshot and loads
// it back at startup.
package backup

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"confessions/model"
	"confessions/store"
	"confessions/throttle"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Snapshot is the persisted document.
type Snapshot struct {
	PendingItems       map[string]Item           `json:"pending_items"`
	PendingQuestions   map[string]QuestionRecord `json:"pending_questions"`
	UserLastConfession map[string]float64        `json:"user_last_confession"`
	BannedUsers        map[string]float64        `json:"banned_users"`
	PublicationQueue   []Item                    `json:"publication_queue"`
	Timestamp          string                    `json:"timestamp"`
}

// Item is one submission. Only the fields of its type are set.
type Item struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	FileID   string `json:"file_id,omitempty"`
	Duration int    `json:"duration,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`

	Question              string   `json:"question,omitempty"`
	Options               []string `json:"options,omitempty"`
	IsAnonymous           bool     `json:"is_anonymous,omitempty"`
	AllowsMultipleAnswers bool     `json:"allows_multiple_answers,omitempty"`
	PollType              string   `json:"poll_type,omitempty"`

	UserID    int64   `json:"user_id"`
	Timestamp float64 `json:"timestamp"`
	State     string  `json:"state,omitempty"`
}

// QuestionRecord is one open question.
type QuestionRecord struct {
	UserID    int64   `json:"user_id"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp,omitempty"`
	InboxRef  string  `json:"inbox_ref,omitempty"`
}

// Times are stored as float unix seconds with microsecond precision.
func toUnix(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixMicro()) / 1e6
}

func fromUnix(f float64) time.Time {
	if f == 0 {
		return time.Time{}
	}
	return time.UnixMicro(int64(math.Round(f * 1e6)))
}

func itemFromSubmission(sub model.Submission, withID bool) Item {
	it := Item{
		Type:      string(sub.Content.Type()),
		UserID:    sub.SubmitterID,
		Timestamp: toUnix(sub.SubmittedAt),
		State:     string(sub.State),
	}
	if withID {
		it.ID = sub.ID
	}
	switch c := sub.Content.(type) {
	case model.Text:
		it.Text = c.Body
	case model.Voice:
		it.FileID, it.Duration, it.FileSize = c.MediaRef, c.DurationSeconds, c.SizeBytes
	case model.Poll:
		it.Question = c.Question
		it.Options = append([]string(nil), c.Options...)
		it.IsAnonymous = c.Anonymous
		it.AllowsMultipleAnswers = c.MultipleAnswers
		it.PollType = c.Kind
	}
	return it
}

func (it Item) submission(id string) (model.Submission, error) {
	var content model.Content
	switch model.ContentType(it.Type) {
	case model.ContentText, "":
		content = model.Text{Body: it.Text}
	case model.ContentVoice:
		content = model.Voice{MediaRef: it.FileID, DurationSeconds: it.Duration, SizeBytes: it.FileSize}
	case model.ContentPoll:
		content = model.Poll{
			Question:        it.Question,
			Options:         it.Options,
			Anonymous:       it.IsAnonymous,
			MultipleAnswers: it.AllowsMultipleAnswers,
			Kind:            it.PollType,
		}
	default:
		return model.Submission{}, errors.Errorf("unknown item type %q", it.Type)
	}
	if err := content.Validate(); err != nil {
		return model.Submission{}, err
	}
	if id == "" {
		return model.Submission{}, errors.New("item without id")
	}

	state, ok := model.ParseState(it.State)
	if !ok {
		state = model.StatePendingReview
	}
	return model.Submission{
		ID:          id,
		Content:     content,
		SubmitterID: it.UserID,
		SubmittedAt: fromUnix(it.Timestamp),
		State:       state,
	}, nil
}

// Build captures the store and guard as a snapshot.
func Build(st store.State, th throttle.State, now time.Time) Snapshot {
	snap := Snapshot{
		PendingItems:       make(map[string]Item, len(st.Items)),
		PendingQuestions:   make(map[string]QuestionRecord, len(st.Questions)),
		UserLastConfession: make(map[string]float64, len(th.LastSubmission)),
		BannedUsers:        make(map[string]float64, len(th.BannedUntil)),
		PublicationQueue:   make([]Item, 0, len(st.Queue)),
		Timestamp:          now.UTC().Format(time.RFC3339),
	}
	for _, sub := range st.Items {
		snap.PendingItems[sub.ID] = itemFromSubmission(sub, false)
	}
	for _, sub := range st.Queue {
		snap.PublicationQueue = append(snap.PublicationQueue, itemFromSubmission(sub, true))
	}
	for _, q := range st.Questions {
		snap.PendingQuestions[q.ID] = QuestionRecord{
			UserID:    q.AskerID,
			Text:      q.Text,
			Timestamp: toUnix(q.AskedAt),
			InboxRef:  q.InboxRef,
		}
	}
	for id, t := range th.LastSubmission {
		snap.UserLastConfession[strconv.FormatInt(id, 10)] = toUnix(t)
	}
	for id, t := range th.BannedUntil {
		snap.BannedUsers[strconv.FormatInt(id, 10)] = toUnix(t)
	}
	return snap
}

// Restore converts a snapshot back to store and guard state. Entries that
// cannot be read are skipped and logged.
func (s Snapshot) Restore(log zerolog.Logger) (store.State, throttle.State) {
	var st store.State
	th := throttle.State{
		LastSubmission: make(map[int64]time.Time, len(s.UserLastConfession)),
		BannedUntil:    make(map[int64]time.Time, len(s.BannedUsers)),
	}

	for id, it := range s.PendingItems {
		sub, err := it.submission(id)
		if err != nil {
			log.Warn().Err(err).Str("id", id).Msg("skipping pending item")
			continue
		}
		st.Items = append(st.Items, sub)
	}

	for _, it := range s.PublicationQueue {
		sub, err := it.submission(it.ID)
		if err != nil {
			log.Warn().Err(err).Str("id", it.ID).Msg("skipping queued item")
			continue
		}
		sub.State = model.StateQueued
		st.Queue = append(st.Queue, sub)
	}

	for id, q := range s.PendingQuestions {
		if q.Text == "" {
			continue
		}
		st.Questions = append(st.Questions, model.Question{
			ID:       id,
			AskerID:  q.UserID,
			Text:     q.Text,
			AskedAt:  fromUnix(q.Timestamp),
			InboxRef: q.InboxRef,
			State:    model.QuestionAwaitingReply,
		})
	}

	restoreTimes(log, s.UserLastConfession, th.LastSubmission)
	restoreTimes(log, s.BannedUsers, th.BannedUntil)
	return st, th
}

func restoreTimes(log zerolog.Logger, in map[string]float64, out map[int64]time.Time) {
	for key, f := range in {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			log.Warn().Str("user", key).Msg("skipping non-numeric user id")
			continue
		}
		out[id] = fromUnix(f)
	}
}

// Encode renders the snapshot as indented JSON.
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	return data, errors.Wrap(err, "encode snapshot")
}

// Decode parses a snapshot. Sections and entries are read one at a time so
// a malformed part falls back to empty without losing the rest.
func Decode(data []byte, log zerolog.Logger) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, errors.Wrap(err, "decode snapshot")
	}

	snap := Snapshot{
		PendingItems:       decodeEntries[Item](log, raw, "pending_items"),
		PendingQuestions:   decodeEntries[QuestionRecord](log, raw, "pending_questions"),
		UserLastConfession: decodeEntries[float64](log, raw, "user_last_confession"),
		BannedUsers:        decodeEntries[float64](log, raw, "banned_users"),
	}

	var queue []json.RawMessage
	if msg, ok := raw["publication_queue"]; ok {
		if err := json.Unmarshal(msg, &queue); err != nil {
			log.Warn().Err(err).Msg("ignoring malformed publication_queue")
		}
	}
	for _, msg := range queue {
		var it Item
		if err := json.Unmarshal(msg, &it); err != nil {
			log.Warn().Err(err).Msg("skipping malformed queued item")
			continue
		}
		snap.PublicationQueue = append(snap.PublicationQueue, it)
	}

	if msg, ok := raw["timestamp"]; ok {
		_ = json.Unmarshal(msg, &snap.Timestamp)
	}
	return snap, nil
}

func decodeEntries[T any](log zerolog.Logger, raw map[string]json.RawMessage, key string) map[string]T {
	out := make(map[string]T)
	msg, ok := raw[key]
	if !ok {
		return out
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(msg, &entries); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ignoring malformed snapshot section")
		return out
	}
	for id, entry := range entries {
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			log.Warn().Err(err).Str("key", key).Str("id", id).Msg("skipping malformed snapshot entry")
			continue
		}
		out[id] = v
	}
	return out
}
