package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/txsandbox/internal/model"
	"github.com/forgo/txsandbox/internal/repository"
	"github.com/forgo/txsandbox/internal/suite"
)

const demoPassword = "correct-horse"

var errForced = errors.New("forced failure")

// demoTree builds the example suites. Each one counts the users, creates
// one more inside a test and checks after the test that the insert is gone
// again. When fail is set the create tests fail after inserting.
func demoTree(users *repository.UserRepository, fail bool) *suite.Suite {
	root := suite.New()

	root.Describe("transactions", func(s *suite.Suite) {
		s.Describe("rolls back correctly", func(s *suite.Suite) {
			countingSuite(s, users, fail, func(ctx context.Context, t suite.T, username string) {
				if _, err := users.Create(ctx, &model.CreateUserRequest{Username: username}); err != nil {
					t.Fatalf("create user: %v", err)
				}
			})
		})
	})

	root.Describe("User model", func(s *suite.Suite) {
		countingSuite(s, users, fail, func(ctx context.Context, t suite.T, username string) {
			password := demoPassword
			if _, err := users.Create(ctx, &model.CreateUserRequest{Username: username, Password: &password}); err != nil {
				t.Fatalf("create user: %v", err)
			}
		})

		s.It("checks the password of a created user", func(ctx context.Context, t suite.T) {
			password := demoPassword
			if _, err := users.Create(ctx, &model.CreateUserRequest{Username: "password_check", Password: &password}); err != nil {
				t.Fatalf("create user: %v", err)
			}
			u, err := users.GetByUsername(ctx, "password_check")
			if err != nil {
				t.Fatalf("get user: %v", err)
			}
			if !repository.CheckPassword(u, demoPassword) {
				t.Errorf("password of %s does not match", u.Username)
			}
			if repository.CheckPassword(u, "wrong") {
				t.Errorf("wrong password of %s matches", u.Username)
			}
		})

		s.It("lists users with a password", nil)
	})

	return root
}

func countingSuite(s *suite.Suite, users *repository.UserRepository, fail bool, create func(ctx context.Context, t suite.T, username string)) {
	var initial int

	s.Before("count users", func(ctx context.Context, _ suite.Runnable) error {
		n, err := users.Count(ctx)
		initial = n
		return err
	})

	s.It("creates a user", func(ctx context.Context, t suite.T) {
		create(ctx, t, fmt.Sprintf("username_%d", initial+1))

		n, err := users.Count(ctx)
		if err != nil {
			t.Fatalf("count users: %v", err)
		}
		if n != initial+1 {
			t.Errorf("expected %d users inside the test, got %d", initial+1, n)
		}
		if fail {
			t.Error(errForced)
		}
	})

	s.After("count users again", func(ctx context.Context, cur suite.Runnable) error {
		if cur.Failed() {
			return nil
		}
		n, err := users.Count(ctx)
		if err != nil {
			return err
		}
		if n != initial {
			return fmt.Errorf("expected %d users after the rollback, got %d", initial, n)
		}
		return nil
	})
}
