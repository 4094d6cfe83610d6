package importer

import (
	"context"
	"errors"
	"log/slog"

	identitymodels "hiretrack/internal/identity/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
)

type demoUser struct {
	username string
	password string
	email    string
	role     domain.Role
}

var demoUsers = []demoUser{
	{username: "hr", password: "hr123", email: "hr@university.edu", role: domain.RoleHR},
	{username: "manager", password: "manager123", email: "manager@university.edu", role: domain.RoleManager},
	{username: "candidate", password: "candidate123", email: "candidate@university.edu", role: domain.RoleCandidate},
}

// SeedDemoUsers provisions the hr, manager and candidate accounts. The
// candidate account is linked to the first candidate when one exists.
// Existing accounts are left untouched.
func SeedDemoUsers(ctx context.Context, users Provisioner, candidates CandidateStore, logger *slog.Logger) ([]*identitymodels.User, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := make([]*identitymodels.User, 0, len(demoUsers))
	for _, d := range demoUsers {
		var link *domain.CandidateID
		if d.role == domain.RoleCandidate {
			first, err := candidates.First(ctx)
			switch {
			case err == nil:
				link = &first.ID
			case !errors.Is(err, sentinel.ErrNotFound):
				return nil, err
			}
		}

		u, created, err := users.Provision(ctx, d.username, d.password, d.email, d.role, link)
		if err != nil {
			return nil, err
		}
		if created {
			logger.InfoContext(ctx, "demo user created", "username", d.username, "role", d.role)
		} else {
			logger.WarnContext(ctx, "demo user already exists", "username", d.username)
		}
		out = append(out, u)
	}
	return out, nil
}
