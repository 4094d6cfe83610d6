package lifecycle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path, as string, body any) error
	Status() int
	Field(name string) (any, error)
	FieldID(name string) (int64, error)
	Unique(name string) string
	SetToken(alias, token string)
	Remember(name string, id int64)
	Recall(name string) (int64, error)
}

// RegisterSteps registers the hiring workflow steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &lifecycleSteps{tc: tc}

	ctx.Step(`^an? (HR|MANAGER|CANDIDATE) user "([^"]*)"$`, steps.registerUser)
	ctx.Step(`^"([^"]*)" creates candidate "([^"]*)"$`, steps.createCandidate)
	ctx.Step(`^a CANDIDATE user "([^"]*)" linked to "([^"]*)"$`, steps.registerLinkedCandidate)
	ctx.Step(`^"([^"]*)" posts job "([^"]*)"$`, steps.postJob)
	ctx.Step(`^"([^"]*)" applies to "([^"]*)"$`, steps.apply)
	ctx.Step(`^"([^"]*)" sets the status of "([^"]*)" to "([^"]*)"$`, steps.setStatus)
	ctx.Step(`^"([^"]*)" withdraws "([^"]*)"$`, steps.withdraw)
	ctx.Step(`^"([^"]*)" should have (\d+) unread notifications$`, steps.unreadShouldBe)
}

type lifecycleSteps struct {
	tc TestContext
}

func (s *lifecycleSteps) register(ctx context.Context, role, alias string, candidateID *int64) error {
	username := s.tc.Unique(alias)
	body := map[string]any{
		"username":     username,
		"password":     "e2e-password",
		"email":        username + "@e2e.test",
		"role":         role,
		"candidate_id": candidateID,
	}
	if err := s.tc.Do(ctx, http.MethodPost, "/auth/register", "", body); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return fmt.Errorf("register %s: status %d", alias, s.tc.Status())
	}
	token, err := s.tc.Field("access_token")
	if err != nil {
		return err
	}
	s.tc.SetToken(alias, fmt.Sprint(token))
	return nil
}

func (s *lifecycleSteps) registerUser(ctx context.Context, role, alias string) error {
	return s.register(ctx, role, alias, nil)
}

func (s *lifecycleSteps) registerLinkedCandidate(ctx context.Context, alias, candidate string) error {
	id, err := s.tc.Recall(candidate)
	if err != nil {
		return err
	}
	return s.register(ctx, "CANDIDATE", alias, &id)
}

func (s *lifecycleSteps) createAndRemember(ctx context.Context, as, path, name string, body any) error {
	if err := s.tc.Do(ctx, http.MethodPost, path, as, body); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return fmt.Errorf("POST %s: status %d", path, s.tc.Status())
	}
	id, err := s.tc.FieldID("id")
	if err != nil {
		return err
	}
	s.tc.Remember(name, id)
	return nil
}

func (s *lifecycleSteps) createCandidate(ctx context.Context, as, name string) error {
	return s.createAndRemember(ctx, as, "/candidates", name, map[string]any{
		"first_name": name,
		"last_name":  "E2E",
		"email":      s.tc.Unique(name) + "@e2e.test",
	})
}

func (s *lifecycleSteps) postJob(ctx context.Context, as, title string) error {
	return s.createAndRemember(ctx, as, "/jobs", title, map[string]any{"title": title})
}

// apply remembers the application as "<alias>'s application".
func (s *lifecycleSteps) apply(ctx context.Context, as, job string) error {
	jobID, err := s.tc.Recall(job)
	if err != nil {
		return err
	}
	if err := s.tc.Do(ctx, http.MethodPost, "/applications", as, map[string]any{"job_id": jobID}); err != nil {
		return err
	}
	if s.tc.Status() == http.StatusCreated {
		id, err := s.tc.FieldID("id")
		if err != nil {
			return err
		}
		s.tc.Remember(as+"'s application", id)
	}
	return nil
}

func (s *lifecycleSteps) setStatus(ctx context.Context, as, application, status string) error {
	id, err := s.tc.Recall(application)
	if err != nil {
		return err
	}
	return s.tc.Do(ctx, http.MethodPatch, fmt.Sprintf("/applications/%d/status", id), as, map[string]any{"status": status})
}

func (s *lifecycleSteps) withdraw(ctx context.Context, as, application string) error {
	id, err := s.tc.Recall(application)
	if err != nil {
		return err
	}
	return s.tc.Do(ctx, http.MethodPost, fmt.Sprintf("/applications/%d/withdraw", id), as, nil)
}

func (s *lifecycleSteps) unreadShouldBe(ctx context.Context, as string, want int) error {
	if err := s.tc.Do(ctx, http.MethodGet, "/notifications/unread-count", as, nil); err != nil {
		return err
	}
	got, err := s.tc.FieldID("unread_count")
	if err != nil {
		return err
	}
	if int(got) != want {
		return fmt.Errorf("expected %d unread notifications for %s, got %d", want, as, got)
	}
	return nil
}
