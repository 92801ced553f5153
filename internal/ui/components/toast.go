// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toasts in the bottom-right corner. Unlike a modal error
// dialog, a toast never steals focus: the investigation keeps streaming
// while the notification is on screen, and expired toasts dismiss
// themselves on the next tick.
package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind classifies a toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan).
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose).
	ToastKindError
	// ToastKindWarning is a warning toast (amber).
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald).
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// SuccessToastDuration is the auto-dismiss duration for success
// confirmations (copy, post). Short: they confirm, they don't inform.
const SuccessToastDuration = 2 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts. Longer,
// so there is time to read a bridge failure before it disappears.
const ErrorToastDuration = 8 * time.Second

// WarningToastDuration is the auto-dismiss duration for warning toasts.
const WarningToastDuration = 6 * time.Second

// Toast is one notification.
type Toast struct {
	ID          int
	Message     string
	Kind        ToastKind
	CreatedAt   time.Time
	Duration    time.Duration
	Dismissible bool
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:          nextToastID(),
		Message:     message,
		Kind:        ToastKindError,
		CreatedAt:   time.Now(),
		Duration:    ErrorToastDuration,
		Dismissible: true,
	}
}

// NewWarningToast creates a warning toast.
func NewWarningToast(message string) Toast {
	return Toast{
		ID:          nextToastID(),
		Message:     message,
		Kind:        ToastKindWarning,
		CreatedAt:   time.Now(),
		Duration:    WarningToastDuration,
		Dismissible: true,
	}
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return Toast{
		ID:          nextToastID(),
		Message:     message,
		Kind:        ToastKindStatus,
		CreatedAt:   time.Now(),
		Duration:    DefaultToastDuration,
		Dismissible: true,
	}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{
		ID:          nextToastID(),
		Message:     message,
		Kind:        ToastKindSuccess,
		CreatedAt:   time.Now(),
		Duration:    SuccessToastDuration,
		Dismissible: true,
	}
}

// IsExpired reports whether the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// TimeRemaining returns the time left before auto-dismiss.
func (t *Toast) TimeRemaining() time.Duration {
	remaining := t.Duration - time.Since(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the active toast stack, newest first.
type ToastManager struct {
	toasts    []Toast
	nextID    int
	maxToasts int
	mutex     sync.Mutex
}

// NewToastManager creates an empty toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		toasts:    make([]Toast, 0),
		nextID:    1,
		maxToasts: 5,
	}
}

// Add adds a toast and returns its id.
func (m *ToastManager) Add(toast Toast) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if toast.ID == 0 {
		toast.ID = m.nextID
		m.nextID++
	}

	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}

	return toast.ID
}

// AddError adds an error toast built from message.
func (m *ToastManager) AddError(message string) int {
	return m.Add(NewErrorToast(message))
}

// AddWarning adds a warning toast built from message.
func (m *ToastManager) AddWarning(message string) int {
	return m.Add(NewWarningToast(message))
}

// AddStatus adds a status toast built from message.
func (m *ToastManager) AddStatus(message string) int {
	return m.Add(NewStatusToast(message))
}

// AddSuccess adds a success toast built from message.
func (m *ToastManager) AddSuccess(message string) int {
	return m.Add(NewSuccessToast(message))
}

// Remove removes the toast with the given id, if present.
func (m *ToastManager) Remove(id int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and returns the survivors. The dashboard calls
// this on every toast tick message.
func (m *ToastManager) Tick() []Toast {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	active := make([]Toast, 0, len(m.toasts))
	for _, toast := range m.toasts {
		if !toast.IsExpired() {
			active = append(active, toast)
		}
	}
	m.toasts = active

	return m.toasts
}

// Toasts returns a copy of the active toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := make([]Toast, len(m.toasts))
	copy(result, m.toasts)
	return result
}

// HasToasts reports whether any toast is active.
func (m *ToastManager) HasToasts() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.toasts) > 0
}

// Clear drops every toast.
func (m *ToastManager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.toasts = make([]Toast, 0)
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg drives toast expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastDismissMsg requests dismissing a specific toast.
type ToastDismissMsg struct {
	ID int
}

// ToastTickCmd schedules the next toast tick.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast box.
func RenderToast(toast Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var accent lipgloss.AdaptiveColor
	var icon string

	switch toast.Kind {
	case ToastKindError:
		accent = styles.Rose
		icon = styles.StatusIndicators.Error
	case ToastKindWarning:
		accent = styles.Amber
		icon = styles.StatusIndicators.Warning
	case ToastKindSuccess:
		accent = styles.Emerald
		icon = styles.StatusIndicators.Success
	default:
		accent = styles.Cyan
		icon = styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8)

	message := toast.Message
	if len(message) > maxWidth-10 {
		message = wrapToastText(message, maxWidth-10)
	}

	content := iconStyle.Render(icon+" ") + messageStyle.Render(message)

	if toast.Dismissible {
		hintStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)

		hints := []string{"[x] Dismiss"}
		if secs := int(toast.TimeRemaining().Seconds()); secs > 0 {
			hints = append(hints, util.IntToString(secs)+"s")
		}

		content += "\n" + hintStyle.Render(strings.Join(hints, "  "))
	}

	toastStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2).
		MaxWidth(maxWidth)

	return toastStyle.Render(content)
}

// RenderToastStack renders the toasts stacked in the bottom-right corner.
func RenderToastStack(toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(toast, width))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	positioned := lipgloss.NewStyle().
		MarginRight(2).
		MarginBottom(1).
		Render(stack)

	if width > 0 && height > 0 {
		return lipgloss.Place(
			width, height,
			lipgloss.Right, lipgloss.Bottom,
			positioned,
		)
	}

	return positioned
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var toastIDMutex sync.Mutex
var toastIDCounter int

func nextToastID() int {
	toastIDMutex.Lock()
	defer toastIDMutex.Unlock()
	toastIDCounter++
	return toastIDCounter
}

// wrapToastText word-wraps a toast message to maxWidth columns.
func wrapToastText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var current strings.Builder

	for _, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
		} else if current.Len()+1+len(word) <= maxWidth {
			current.WriteString(" ")
			current.WriteString(word)
		} else {
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return strings.Join(lines, "\n")
}
