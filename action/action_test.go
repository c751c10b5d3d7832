package action

import (
	"testing"

	"confessions/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  Action
	}{
		{"mod:ok:text:abc", Action{Domain: DomainContent, Verb: Approve, Kind: model.ContentText, ID: "abc"}},
		{"mod:cola:poll:abc", Action{Domain: DomainContent, Verb: Queue, Kind: model.ContentPoll, ID: "abc"}},
		{"mod:no:voice:abc", Action{Domain: DomainContent, Verb: Reject, Kind: model.ContentVoice, ID: "abc"}},
		{"mod:ban:text:abc", Action{Domain: DomainContent, Verb: Sanction, Kind: model.ContentText, ID: "abc"}},
		{"mod:ban:text:abc:24:123456789012345678", Action{
			Domain: DomainContent, Verb: Sanction, Kind: model.ContentText, ID: "abc",
			Hours: 24, UserID: 123456789012345678,
		}},
		{"mod:cancel:text:abc", Action{Domain: DomainContent, Verb: Cancel, Kind: model.ContentText, ID: "abc"}},
		{"q:res:xyz", Action{Domain: DomainQuestion, Verb: Reply, ID: "xyz"}},
		{"q:ban:xyz:2:77", Action{Domain: DomainQuestion, Verb: Sanction, ID: "xyz", Hours: 2, UserID: 77}},
		{"q:cancel:xyz", Action{Domain: DomainQuestion, Verb: Cancel, ID: "xyz"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.token, got.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, token := range []string{
		"",
		"mod",
		"mod:ok",
		"mod:ok:text",
		"mod:ok:image:abc",
		"mod:zap:text:abc",
		"mod:ok:text:",
		"mod:ok:text:abc:1:2",
		"mod:ban:text:abc:1",
		"mod:ban:text:abc:x:2",
		"mod:ban:text:abc:0:2",
		"mod:ban:text:abc:1:bob",
		"q:ok:xyz",
		"vote:pass:abc",
	} {
		_, err := Parse(token)
		assert.ErrorIs(t, err, ErrMalformed, token)
	}
}

func TestBuilders(t *testing.T) {
	t.Parallel()

	sub := model.Submission{ID: "s1", Content: model.Voice{MediaRef: "f"}, SubmitterID: 9}
	assert.Equal(t, "mod:cola:voice:s1", ForSubmission(Queue, sub).String())
	assert.Equal(t, "mod:ban:voice:s1:4:9", ConfirmSubmissionSanction(sub, 4).String())
	assert.True(t, ConfirmSubmissionSanction(sub, 4).ConfirmsSanction())
	assert.False(t, ForSubmission(Sanction, sub).ConfirmsSanction())

	q := model.Question{ID: "q1", AskerID: 3}
	assert.Equal(t, "q:res:q1", ForQuestion(Reply, q).String())
	assert.Equal(t, "q:ban:q1:1:3", ConfirmQuestionSanction(q, 1).String())
}
