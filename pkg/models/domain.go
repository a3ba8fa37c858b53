// Domain collaborator contracts: tasks, calendar, email, contacts and
// drive are external capability providers. The agent core calls them
// through these interfaces and must survive any of their failures.
package models

import (
	"context"
	"errors"
	"time"
)

// ErrNotConnected is returned by a collaborator when the user has not
// linked the underlying account. The tool dispatcher translates it into
// a tool result telling the model to prompt the user to connect.
var ErrNotConnected = errors.New("account not connected")

// Task priorities
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
	PriorityNoise  = "NOISE"
)

// Task is a user task as surfaced by the task collaborator.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskList wraps a set of tasks.
type TaskList struct {
	Items []Task `json:"items"`
}

// TaskFilter narrows findAll queries.
type TaskFilter struct {
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// BriefingSummary counts pending tasks by priority.
type BriefingSummary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Noise  int `json:"noise"`
	Total  int `json:"total"`
}

// BriefingTasks groups pending tasks by priority.
type BriefingTasks struct {
	High   []Task `json:"high"`
	Medium []Task `json:"medium"`
	Low    []Task `json:"low"`
	Noise  []Task `json:"noise"`
}

// Briefing is the day overview the task collaborator produces.
type Briefing struct {
	Date    time.Time       `json:"date"`
	Summary BriefingSummary `json:"summary"`
	Tasks   BriefingTasks   `json:"tasks"`
}

// TaskService provides task operations.
type TaskService interface {
	FindAll(ctx context.Context, userID string, filter TaskFilter) (*TaskList, error)
	Create(ctx context.Context, userID string, req CreateTaskRequest) (*Task, error)
	Complete(ctx context.Context, userID, taskID string) (*Task, error)
	GetTodaysBriefing(ctx context.Context, userID string) (*Briefing, error)
}

// Event is a calendar event.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	Status      string    `json:"status,omitempty"`
	HTMLLink    string    `json:"html_link,omitempty"`
}

// CreateEventRequest is the payload for creating an event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}

// UpdateEventRequest carries optional event field updates.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Location    *string    `json:"location,omitempty"`
}

// BusySlot is an occupied interval from a free/busy query.
type BusySlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarService provides calendar operations.
type CalendarService interface {
	GetEvents(ctx context.Context, userID string, from, to time.Time) ([]Event, error)
	GetTodayEvents(ctx context.Context, userID string) ([]Event, error)
	GetUpcomingEvents(ctx context.Context, userID string, days int) ([]Event, error)
	CreateEvent(ctx context.Context, userID string, req CreateEventRequest) (*Event, error)
	UpdateEvent(ctx context.Context, userID, eventID string, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
	GetFreeBusy(ctx context.Context, userID string, from, to time.Time) ([]BusySlot, error)
}

// Email is a mail message summary.
type Email struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      []string  `json:"to,omitempty"`
	Subject string    `json:"subject"`
	Snippet string    `json:"snippet,omitempty"`
	Body    string    `json:"body,omitempty"`
	Date    time.Time `json:"date"`
	Unread  bool      `json:"unread"`
}

// SendEmailRequest is the payload for sending mail.
type SendEmailRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// EmailService provides mailbox operations.
type EmailService interface {
	GetInboxEmails(ctx context.Context, userID string, limit int) ([]Email, error)
	GetUnreadEmails(ctx context.Context, userID string, limit int) ([]Email, error)
	SearchEmails(ctx context.Context, userID, query string, limit int) ([]Email, error)
	SendEmail(ctx context.Context, userID string, req SendEmailRequest) (string, error)
	ReplyToEmail(ctx context.Context, userID, emailID, body string) (string, error)
	GetEmailDetail(ctx context.Context, userID, emailID string) (*Email, error)
	ArchiveEmail(ctx context.Context, userID, emailID string) error
	MarkAsRead(ctx context.Context, userID, emailID string) error
	GetUnreadCount(ctx context.Context, userID string) (int, error)
}

// Contact is an address book entry.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// ContactService provides address book operations.
type ContactService interface {
	GetContacts(ctx context.Context, userID string, limit int) ([]Contact, error)
	SearchContacts(ctx context.Context, userID, query string) ([]Contact, error)
}

// DriveFile is a stored file summary.
type DriveFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type,omitempty"`
	ModifiedTime time.Time `json:"modified_time"`
	WebViewLink  string    `json:"web_view_link,omitempty"`
	Size         int64     `json:"size,omitempty"`
	Starred      bool      `json:"starred,omitempty"`
	Shared       bool      `json:"shared,omitempty"`
}

// StorageQuota describes drive usage.
type StorageQuota struct {
	Limit int64 `json:"limit"`
	Usage int64 `json:"usage"`
}

// DriveService provides file storage operations.
type DriveService interface {
	SearchFiles(ctx context.Context, userID, query string, limit int) ([]DriveFile, error)
	ListRecentFiles(ctx context.Context, userID string, limit int) ([]DriveFile, error)
	ListFilesByType(ctx context.Context, userID, mimeType string, limit int) ([]DriveFile, error)
	ListSharedWithMe(ctx context.Context, userID string, limit int) ([]DriveFile, error)
	ListStarredFiles(ctx context.Context, userID string, limit int) ([]DriveFile, error)
	GetFileInfo(ctx context.Context, userID, fileID string) (*DriveFile, error)
	GetStorageQuota(ctx context.Context, userID string) (*StorageQuota, error)
}

// Domain bundles all collaborators for wiring.
type Domain struct {
	Tasks    TaskService
	Calendar CalendarService
	Email    EmailService
	Contacts ContactService
	Drive    DriveService
}

// NewUnconnectedDomain returns collaborators that answer ErrNotConnected
// for every operation. It is the default wiring when no real
// integrations are configured; the agent stays usable and tells the
// user to connect their accounts.
func NewUnconnectedDomain() Domain {
	return Domain{
		Tasks:    unconnectedTasks{},
		Calendar: unconnectedCalendar{},
		Email:    unconnectedEmail{},
		Contacts: unconnectedContacts{},
		Drive:    unconnectedDrive{},
	}
}

type unconnectedTasks struct{}

func (unconnectedTasks) FindAll(context.Context, string, TaskFilter) (*TaskList, error) {
	return nil, ErrNotConnected
}
func (unconnectedTasks) Create(context.Context, string, CreateTaskRequest) (*Task, error) {
	return nil, ErrNotConnected
}
func (unconnectedTasks) Complete(context.Context, string, string) (*Task, error) {
	return nil, ErrNotConnected
}
func (unconnectedTasks) GetTodaysBriefing(context.Context, string) (*Briefing, error) {
	return nil, ErrNotConnected
}

type unconnectedCalendar struct{}

func (unconnectedCalendar) GetEvents(context.Context, string, time.Time, time.Time) ([]Event, error) {
	return nil, ErrNotConnected
}
func (unconnectedCalendar) GetTodayEvents(context.Context, string) ([]Event, error) {
	return nil, ErrNotConnected
}
func (unconnectedCalendar) GetUpcomingEvents(context.Context, string, int) ([]Event, error) {
	return nil, ErrNotConnected
}
func (unconnectedCalendar) CreateEvent(context.Context, string, CreateEventRequest) (*Event, error) {
	return nil, ErrNotConnected
}
func (unconnectedCalendar) UpdateEvent(context.Context, string, string, UpdateEventRequest) (*Event, error) {
	return nil, ErrNotConnected
}
func (unconnectedCalendar) DeleteEvent(context.Context, string, string) error {
	return ErrNotConnected
}
func (unconnectedCalendar) GetFreeBusy(context.Context, string, time.Time, time.Time) ([]BusySlot, error) {
	return nil, ErrNotConnected
}

type unconnectedEmail struct{}

func (unconnectedEmail) GetInboxEmails(context.Context, string, int) ([]Email, error) {
	return nil, ErrNotConnected
}
func (unconnectedEmail) GetUnreadEmails(context.Context, string, int) ([]Email, error) {
	return nil, ErrNotConnected
}
func (unconnectedEmail) SearchEmails(context.Context, string, string, int) ([]Email, error) {
	return nil, ErrNotConnected
}
func (unconnectedEmail) SendEmail(context.Context, string, SendEmailRequest) (string, error) {
	return "", ErrNotConnected
}
func (unconnectedEmail) ReplyToEmail(context.Context, string, string, string) (string, error) {
	return "", ErrNotConnected
}
func (unconnectedEmail) GetEmailDetail(context.Context, string, string) (*Email, error) {
	return nil, ErrNotConnected
}
func (unconnectedEmail) ArchiveEmail(context.Context, string, string) error {
	return ErrNotConnected
}
func (unconnectedEmail) MarkAsRead(context.Context, string, string) error {
	return ErrNotConnected
}
func (unconnectedEmail) GetUnreadCount(context.Context, string) (int, error) {
	return 0, ErrNotConnected
}

type unconnectedContacts struct{}

func (unconnectedContacts) GetContacts(context.Context, string, int) ([]Contact, error) {
	return nil, ErrNotConnected
}
func (unconnectedContacts) SearchContacts(context.Context, string, string) ([]Contact, error) {
	return nil, ErrNotConnected
}

type unconnectedDrive struct{}

func (unconnectedDrive) SearchFiles(context.Context, string, string, int) ([]DriveFile, error) {
	return nil, ErrNotConnected
}
func (unconnectedDrive) ListRecentFiles(context.Context, string, int) ([]DriveFile, error) {
	return nil, ErrNotConnected
}
func (unconnectedDrive) ListFilesByType(context.Context, string, string, int) ([]DriveFile, error) {
	return nil, ErrNotConnected
}
func (unconnectedDrive) ListSharedWithMe(context.Context, string, int) ([]DriveFile, error) {
	return nil, ErrNotConnected
}
func (unconnectedDrive) ListStarredFiles(context.Context, string, int) ([]DriveFile, error) {
	return nil, ErrNotConnected
}
func (unconnectedDrive) GetFileInfo(context.Context, string, string) (*DriveFile, error) {
	return nil, ErrNotConnected
}
func (unconnectedDrive) GetStorageQuota(context.Context, string) (*StorageQuota, error) {
	return nil, ErrNotConnected
}
