package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
	"go.uber.org/zap"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionIDEmpty  = errors.New("submission id is required")
)

// TimestampLayout 固定毫秒位数，保证字符串顺序与时间顺序一致
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// ContactInput is what the public form posts.
type ContactInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// ContactSubmission is one stored message.
type ContactSubmission struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ValidationErrors maps form fields to their messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid contact form: " + strings.Join(fields, ", ")
}

// ValidateContact applies the public form rules. It returns nil when the input is acceptable.
func ValidateContact(in ContactInput) ValidationErrors {
	errs := ValidationErrors{}

	words := strings.Fields(in.Name)
	shortWord := false
	for _, word := range words {
		if utf8.RuneCountInString(word) < 3 {
			shortWord = true
			break
		}
	}
	if len(words) < 2 || shortWord {
		errs["name"] = "Please enter your full name (first & last name, minimum 3 characters each)"
	}

	if !emailPattern.MatchString(in.Email) {
		errs["email"] = "Please enter a valid email address"
	}

	if in.Phone != "" {
		if digits := countDigits(in.Phone); digits < 10 || digits > 12 {
			errs["phone"] = "Phone number must be between 10-12 digits"
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Subject)) < 5 {
		errs["subject"] = "Subject must be at least 5 characters long"
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Message)) < 20 {
		errs["message"] = "Message must be at least 20 characters long"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// BulkDeleteResult reports the outcome per identifier.
type BulkDeleteResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed"`
}

// ContactService stores public submissions and lets admins manage them.
type ContactService struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewContactService returns a ContactService backed by st.
func NewContactService(st store.Store, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{store: st, log: log, now: time.Now}
}

// Submit validates and appends a timestamped submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*ContactSubmission, error) {
	if errs := ValidateContact(in); errs != nil {
		return nil, errs
	}

	submission := ContactSubmission{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		Timestamp: s.now().UTC().Format(TimestampLayout),
	}

	id, err := s.store.Add(ctx, content.ContactsCollection, submissionFields(submission))
	if err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}
	submission.ID = id
	return &submission, nil
}

// List returns every submission, newest first.
func (s *ContactService) List(ctx context.Context) ([]ContactSubmission, error) {
	docs, err := s.store.QueryOrdered(ctx, content.ContactsCollection, "timestamp", store.Descending)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	out := make([]ContactSubmission, 0, len(docs))
	for _, doc := range docs {
		out = append(out, submissionFromDocument(doc))
	}
	return out, nil
}

// Delete removes one submission after confirming it still exists.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrSubmissionIDEmpty
	}

	if _, err := s.store.Get(ctx, content.ContactsCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
		}
		return fmt.Errorf("check submission %s: %w", id, err)
	}

	if err := s.store.Delete(ctx, content.ContactsCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
		}
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	return nil
}

// BulkDelete deletes each id independently; one failure does not stop the rest.
func (s *ContactService) BulkDelete(ctx context.Context, ids []string) BulkDeleteResult {
	result := BulkDeleteResult{Deleted: []string{}, Failed: map[string]string{}}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := s.Delete(ctx, id); err != nil {
			s.log.Warn("delete submission failed", zap.String("id", id), zap.Error(err))
			result.Failed[id] = DeleteFailureMessage(err)
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result
}

// DeleteFailureMessage maps a delete error to the message shown to the admin.
func DeleteFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrSubmissionNotFound):
		return "Submission no longer exists. Refresh the list and try again."
	case errors.Is(err, store.ErrPermission):
		return "You do not have permission to delete this submission. Please check your login status."
	case errors.Is(err, ErrSubmissionIDEmpty):
		return "Submission id is required"
	}
	return "Failed to delete submission: " + err.Error()
}

func submissionFields(s ContactSubmission) content.Tree {
	fields := content.Tree{
		"name":      s.Name,
		"email":     s.Email,
		"subject":   s.Subject,
		"message":   s.Message,
		"timestamp": s.Timestamp,
	}
	if s.Phone != "" {
		fields["phone"] = s.Phone
	}
	return fields
}

func submissionFromDocument(doc store.Document) ContactSubmission {
	str := func(key string) string {
		v, _ := doc.Fields[key].(string)
		return v
	}
	return ContactSubmission{
		ID:        doc.ID,
		Name:      str("name"),
		Email:     str("email"),
		Phone:     str("phone"),
		Subject:   str("subject"),
		Message:   str("message"),
		Timestamp: str("timestamp"),
	}
}
