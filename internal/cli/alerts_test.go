package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/wbs/internal/observability"
)

type alertsMock struct {
	evaluateFn func() ([]observability.Alert, error)
}

func (m *alertsMock) Evaluate() ([]observability.Alert, error) {
	return m.evaluateFn()
}

type notifierMock struct {
	notifyFn func(alerts []observability.Alert) error
}

func (m *notifierMock) Notify(alerts []observability.Alert) error {
	return m.notifyFn(alerts)
}

func TestAlertsCmd_NilEngine(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()
	AlertEngine = nil

	_, err := runCmd(alertsCmd)
	if err == nil {
		t.Fatal("expected error when AlertEngine is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlertsCmd_NoAlerts(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return nil, nil
		},
	}

	out, err := runCmd(alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No active alerts.\n" {
		t.Errorf("output = %q", out)
	}
}

func TestAlertsCmd_WithAlerts(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return []observability.Alert{
				{Severity: observability.SeverityHigh, Message: "SPI 0.42 is below 0.90", TriggeredAt: time.Now().UTC()},
				{Severity: observability.SeverityLow, Message: "12 open work packages", TriggeredAt: time.Now().UTC()},
			}, nil
		},
	}

	out, err := runCmd(alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"2 active alert(s)", "[HIGH] SPI 0.42 is below 0.90", "[LOW] 12 open work packages"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAlertsCmd_EvaluateError(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return nil, fmt.Errorf("event log read error")
		},
	}

	_, err := runCmd(alertsCmd)
	if err == nil {
		t.Fatal("expected error from Evaluate")
	}
	if !strings.Contains(err.Error(), "evaluating alerts") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlertsCmd_NotifyWithoutNotifier(t *testing.T) {
	origEngine := AlertEngine
	origNotifier := Notifier
	defer func() {
		AlertEngine = origEngine
		Notifier = origNotifier
	}()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return []observability.Alert{
				{Severity: observability.SeverityHigh, Message: "CPI 0.50 is below 0.90", TriggeredAt: time.Now().UTC()},
			}, nil
		},
	}
	Notifier = nil

	alertsNotify = true
	defer func() { alertsNotify = false }()

	_, err := runCmd(alertsCmd)
	if err == nil {
		t.Fatal("expected error when notifier is nil")
	}
	if !strings.Contains(err.Error(), "notifier not configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlertsCmd_NotifySuccess(t *testing.T) {
	origEngine := AlertEngine
	origNotifier := Notifier
	defer func() {
		AlertEngine = origEngine
		Notifier = origNotifier
	}()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return []observability.Alert{
				{Severity: observability.SeverityMedium, Message: "no activity for 9 days", TriggeredAt: time.Now().UTC()},
			}, nil
		},
	}

	var notified bool
	Notifier = &notifierMock{
		notifyFn: func(alerts []observability.Alert) error {
			notified = true
			return nil
		},
	}

	alertsNotify = true
	defer func() { alertsNotify = false }()

	out, err := runCmd(alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !notified {
		t.Error("expected Notify to be called")
	}
	if !strings.Contains(out, "Notification sent.") {
		t.Errorf("output = %q", out)
	}
}

func TestAlertsCmd_NotifyError(t *testing.T) {
	origEngine := AlertEngine
	origNotifier := Notifier
	defer func() {
		AlertEngine = origEngine
		Notifier = origNotifier
	}()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return []observability.Alert{
				{Severity: observability.SeverityLow, Message: "12 open work packages", TriggeredAt: time.Now().UTC()},
			}, nil
		},
	}
	Notifier = &notifierMock{
		notifyFn: func(alerts []observability.Alert) error {
			return fmt.Errorf("webhook failed")
		},
	}

	alertsNotify = true
	defer func() { alertsNotify = false }()

	_, err := runCmd(alertsCmd)
	if err == nil {
		t.Fatal("expected error from Notify")
	}
	if !strings.Contains(err.Error(), "sending notification") {
		t.Errorf("unexpected error: %v", err)
	}
}
