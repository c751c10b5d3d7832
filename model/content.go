package model

import "github.com/pkg/errors"

// ContentType tags the variant held by a Content value.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVoice ContentType = "voice"
	ContentPoll  ContentType = "poll"
)

// Poll kinds accepted from users.
const (
	PollRegular = "regular"
	PollQuiz    = "quiz"
)

var (
	// ErrEmptyContent is returned for a submission with nothing to publish.
	ErrEmptyContent = errors.New("content is empty")
	// ErrTooFewOptions is returned for a poll with fewer than two options.
	ErrTooFewOptions = errors.New("poll needs at least two options")
	// ErrVoiceTooLarge is returned for audio over MaxVoiceBytes.
	ErrVoiceTooLarge = errors.New("voice clip too large")
)

// MaxVoiceBytes is the largest attachment the public channel accepts.
const MaxVoiceBytes = 25 << 20

// ParseContentType maps the wire name of a content variant back to its tag.
func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(s) {
	case ContentText, ContentVoice, ContentPoll:
		return ContentType(s), true
	}
	return "", false
}

// Content is the payload of a submission: one of Text, Voice or Poll.
type Content interface {
	Type() ContentType
	Validate() error
}

// Text is a plain written confession.
type Text struct {
	Body string
}

func (Text) Type() ContentType { return ContentText }

func (t Text) Validate() error {
	if t.Body == "" {
		return ErrEmptyContent
	}
	return nil
}

// Voice references an audio clip held by the transport.
type Voice struct {
	MediaRef        string
	DurationSeconds int
	SizeBytes       int64
}

func (Voice) Type() ContentType { return ContentVoice }

func (v Voice) Validate() error {
	if v.MediaRef == "" {
		return ErrEmptyContent
	}
	if v.SizeBytes > MaxVoiceBytes {
		return errors.Wrapf(ErrVoiceTooLarge, "%d bytes", v.SizeBytes)
	}
	return nil
}

// Poll is a native poll. Options keep the order the user gave them.
type Poll struct {
	Question        string
	Options         []string
	Anonymous       bool
	MultipleAnswers bool
	Kind            string
}

func (Poll) Type() ContentType { return ContentPoll }

func (p Poll) Validate() error {
	if p.Question == "" {
		return ErrEmptyContent
	}
	if len(p.Options) < 2 {
		return ErrTooFewOptions
	}
	return nil
}

// CloneContent returns a copy that shares no mutable memory with c.
func CloneContent(c Content) Content {
	if p, ok := c.(Poll); ok {
		p.Options = append([]string(nil), p.Options...)
		return p
	}
	return c
}
