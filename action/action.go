// Package action parses the compact tokens carried by moderator buttons into
// typed actions, and encodes them back.
//
// Content tokens look like "mod:ok:text:<id>"; a sanction confirmation adds
// the duration and target user, "mod:ban:poll:<id>:<hours>:<user>". Question
// tokens omit the kind: "q:res:<id>", "q:ban:<id>:<hours>:<user>".
package action

import (
	"strconv"
	"strings"

	"confessions/model"

	"github.com/pkg/errors"
)

// Domain selects the workflow a token belongs to.
type Domain string

const (
	DomainContent  Domain = "mod"
	DomainQuestion Domain = "q"
)

// Verb is the moderator's choice.
type Verb string

const (
	Approve  Verb = "ok"
	Queue    Verb = "cola"
	Reject   Verb = "no"
	Sanction Verb = "ban"
	Cancel   Verb = "cancel"
	Reply    Verb = "res"
)

const sep = ":"

// ErrMalformed is returned for tokens that do not follow the grammar above.
var ErrMalformed = errors.New("malformed action token")

// Action is a decoded moderator button press.
type Action struct {
	Domain Domain
	Verb   Verb
	Kind   model.ContentType
	ID     string
	// Hours and UserID are set only on a sanction confirmation.
	Hours  int
	UserID int64
}

// ConfirmsSanction reports whether the action carries a chosen ban duration.
func (a Action) ConfirmsSanction() bool {
	return a.Verb == Sanction && a.Hours > 0
}

// String encodes the action as a token.
func (a Action) String() string {
	parts := []string{string(a.Domain), string(a.Verb)}
	if a.Domain == DomainContent {
		parts = append(parts, string(a.Kind))
	}
	parts = append(parts, a.ID)
	if a.ConfirmsSanction() {
		parts = append(parts, strconv.Itoa(a.Hours), strconv.FormatInt(a.UserID, 10))
	}
	return strings.Join(parts, sep)
}

// Parse decodes a token.
func Parse(token string) (Action, error) {
	parts := strings.Split(token, sep)
	if len(parts) < 3 {
		return Action{}, errors.Wrapf(ErrMalformed, "%q", token)
	}

	a := Action{Domain: Domain(parts[0]), Verb: Verb(parts[1])}
	var rest []string
	switch a.Domain {
	case DomainContent:
		if len(parts) < 4 {
			return Action{}, errors.Wrapf(ErrMalformed, "%q: missing id", token)
		}
		kind, ok := model.ParseContentType(parts[2])
		if !ok {
			return Action{}, errors.Wrapf(ErrMalformed, "%q: unknown kind", token)
		}
		a.Kind = kind
		a.ID = parts[3]
		rest = parts[4:]
		switch a.Verb {
		case Approve, Queue, Reject, Sanction, Cancel:
		default:
			return Action{}, errors.Wrapf(ErrMalformed, "%q: unknown verb", token)
		}
	case DomainQuestion:
		a.ID = parts[2]
		rest = parts[3:]
		switch a.Verb {
		case Reply, Sanction, Cancel:
		default:
			return Action{}, errors.Wrapf(ErrMalformed, "%q: unknown verb", token)
		}
	default:
		return Action{}, errors.Wrapf(ErrMalformed, "%q: unknown domain", token)
	}

	if a.ID == "" {
		return Action{}, errors.Wrapf(ErrMalformed, "%q: empty id", token)
	}

	switch len(rest) {
	case 0:
	case 2:
		if a.Verb != Sanction {
			return Action{}, errors.Wrapf(ErrMalformed, "%q: extra fields", token)
		}
		hours, err := strconv.Atoi(rest[0])
		if err != nil || hours <= 0 {
			return Action{}, errors.Wrapf(ErrMalformed, "%q: bad duration", token)
		}
		user, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return Action{}, errors.Wrapf(ErrMalformed, "%q: bad user id", token)
		}
		a.Hours, a.UserID = hours, user
	default:
		return Action{}, errors.Wrapf(ErrMalformed, "%q: extra fields", token)
	}

	return a, nil
}

// ForSubmission builds a content action for a submission.
func ForSubmission(verb Verb, sub model.Submission) Action {
	return Action{Domain: DomainContent, Verb: verb, Kind: sub.Content.Type(), ID: sub.ID}
}

// ConfirmSubmissionSanction builds the duration button for a submission.
func ConfirmSubmissionSanction(sub model.Submission, hours int) Action {
	a := ForSubmission(Sanction, sub)
	a.Hours, a.UserID = hours, sub.SubmitterID
	return a
}

// ForQuestion builds a question action.
func ForQuestion(verb Verb, q model.Question) Action {
	return Action{Domain: DomainQuestion, Verb: verb, ID: q.ID}
}

// ConfirmQuestionSanction builds the duration button for a question's asker.
func ConfirmQuestionSanction(q model.Question, hours int) Action {
	a := ForQuestion(Sanction, q)
	a.Hours, a.UserID = hours, q.AskerID
	return a
}
