package user_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/user"
	emailsvc "github.com/dentalearn/lms/services/email"
	logsvc "github.com/dentalearn/lms/services/logger"
	inmemdb "github.com/dentalearn/lms/storage/database/inmem"
	testutil "github.com/dentalearn/lms/tests"
)

func newValidation(t *testing.T) (*validator.Validate, func(error) map[string]string, user.ServiceInterface, user.Repository) {
	t.Helper()
	conf := &core.Config{AppName: "DentaLearn", SecretKey: "secret"}
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf))

	repo := inmemdb.NewUserRepository(inmemdb.Open())
	svc := user.NewServiceMock(repo, emailsvc.NewConsoleServiceMock(conf), conf)

	messages := func(err error) map[string]string {
		t.Helper()
		if err == nil {
			return nil
		}
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return map[string]string{"error": err.Error()}
		}
		msgs := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			msgs[fe.Field()] = fe.Translate(translator)
		}
		return msgs
	}
	return validate, messages, svc, repo
}

func TestNewUser_Validate(t *testing.T) {
	validate, messages, svc, repo := newValidation(t)
	ctx := context.Background()
	testutil.CreateUser(t, repo, "Taken", "taken", "taken@test.test", "", nil, true)

	valid := func(mutate func(nu *user.NewUser)) user.NewUser {
		nu := user.NewUser{
			Name:            "Dr Ada Lovelace",
			Username:        "ada",
			Email:           "ada@test.test",
			Password:        "Xq7!mPz#Lw92",
			PasswordConfirm: "Xq7!mPz#Lw92",
			Roles:           []string{user.RoleStudent},
		}
		if mutate != nil {
			mutate(&nu)
		}
		return nu
	}
	setPwd := func(pwd string) func(nu *user.NewUser) {
		return func(nu *user.NewUser) {
			nu.Password = pwd
			nu.PasswordConfirm = pwd
		}
	}

	tests := []struct {
		name string
		nu   user.NewUser
		want map[string]string
	}{
		{name: "valid", nu: valid(nil)},
		{
			name: "username or email",
			nu:   valid(func(nu *user.NewUser) { nu.Username, nu.Email = "  ", "" }),
			want: map[string]string{
				"username": "one of username or email is required",
				"email":    "one of username or email is required",
			},
		},
		{
			name: "bad username",
			nu:   valid(func(nu *user.NewUser) { nu.Username = "ada-l" }),
			want: map[string]string{"username": "only alphanumeric characters and underscores are allowed"},
		},
		{
			name: "invalid role",
			nu:   valid(func(nu *user.NewUser) { nu.Roles = []string{"superhero"} }),
			want: map[string]string{"roles": "invalid roles"},
		},
		{
			name: "confirmation mismatch",
			nu:   valid(func(nu *user.NewUser) { nu.PasswordConfirm = "other" }),
			want: map[string]string{"password_confirm": "password_confirm must be equal to Password"},
		},
		{name: "too short", nu: valid(setPwd("Ab1!")), want: map[string]string{"password": "password must contain at least 8 characters"}},
		{name: "whitespace", nu: valid(setPwd("Ab1! cdefg")), want: map[string]string{"password": "password must not contain whitespace"}},
		{name: "numeric", nu: valid(setPwd("1234567890")), want: map[string]string{"password": "password cannot be entirely numeric"}},
		{
			name: "not complex",
			nu:   valid(setPwd("abcdefgh1")),
			want: map[string]string{"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		},
		{
			name: "similar to email",
			nu:   valid(setPwd("Ada@test.test1")),
			want: map[string]string{"password": "password cannot be similar to user attributes"},
		},
		{name: "common", nu: valid(setPwd("P@ssw0rd")), want: map[string]string{"password": "password is too common"}},
		{
			name: "username taken",
			nu:   valid(func(nu *user.NewUser) { nu.Username = " TAKEN " }),
			want: map[string]string{"error": user.ErrUsernameExists.Error()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			assert.Equal(t, tt.want, messages(nu.Validate(ctx, validate, svc)))
		})
	}
}

func TestUpdateUser_Validate(t *testing.T) {
	validate, messages, svc, repo := newValidation(t)
	ctx := context.Background()
	orig := testutil.CreateUser(t, repo, "Bob", "bob", "bob@test.test", "", nil, true)
	testutil.CreateUser(t, repo, "Eve", "eve", "eve@test.test", "", nil, true)

	t.Run("blank fields keep the original", func(t *testing.T) {
		uu := user.UpdateUser{Name: " "}
		require.NoError(t, uu.Validate(ctx, orig, validate, svc))
		assert.Equal(t, "Bob", uu.Name)
		assert.Equal(t, "bob", uu.Username)
		assert.Equal(t, "bob@test.test", uu.Email)
	})

	t.Run("email taken", func(t *testing.T) {
		uu := user.UpdateUser{Email: "EVE@test.test"}
		assert.Equal(t, map[string]string{"error": user.ErrEmailExists.Error()}, messages(uu.Validate(ctx, orig, validate, svc)))
	})

	t.Run("password checked only when set", func(t *testing.T) {
		uu := user.UpdateUser{Password: "short", PasswordConfirm: "short"}
		assert.Equal(t,
			map[string]string{"password": "password must contain at least 8 characters"},
			messages(uu.Validate(ctx, orig, validate, svc)),
		)
	})
}
