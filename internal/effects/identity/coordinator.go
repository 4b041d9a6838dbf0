// Package identity реализует координатор эффектов среза identity:
// регистрацию и вход, загрузку и обновление документа пользователя,
// OTP-подтверждение почты, сброс пароля и удаление аккаунта.
// Координатор слушает зафиксированные намерения и выполняет внешние
// вызовы в собственных горутинах, возвращая результат новым намерением.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/wellbeing-journal/internal/client/otp"
	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	idn "github.com/magabrotheeeer/wellbeing-journal/internal/slices/identity"
	"github.com/magabrotheeeer/wellbeing-journal/internal/storage/authpg"
	"github.com/magabrotheeeer/wellbeing-journal/internal/storage/docstore"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// Категории запросов для дисциплины "выигрывает последний".
const (
	categoryAuth          = "identity.auth"
	categoryFetchUser     = "identity.fetchUser"
	categoryUpdateProfile = "identity.updateProfile"
	categoryPasswordReset = "identity.passwordReset"
	categoryDeleteAccount = "identity.deleteAccount"
	categorySendOTP       = "identity.sendOTP"
	categoryVerifyOTP     = "identity.verifyOTP"
	categoryReminders     = "identity.saveReminders"
)

// Dispatcher контракт хранилища, достаточный координатору.
type Dispatcher interface {
	Dispatch(in store.Intent)
	ResetSnapshots(keepLanguage string)
}

// Auth контракт провайдера идентификации.
type Auth interface {
	CreateAccount(ctx context.Context, email, password, name string) (*authpg.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*authpg.AuthResult, error)
	SignInWithCredential(ctx context.Context, provider models.Provider, subject, email, name, photoRef string) (*authpg.AuthResult, error)
	Reauthenticate(ctx context.Context, uid, password string) error
	SendPasswordReset(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context, uid string) error
	MarkEmailVerified(ctx context.Context, uid string) error
}

// Docs контракт документного хранилища пользователей.
type Docs interface {
	SaveUserDoc(ctx context.Context, doc models.UserDoc) error
	GetUserDoc(ctx context.Context, uid string) (*models.UserDoc, error)
	UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) error
	SaveReminders(ctx context.Context, uid string, reminders models.Reminders) error
	DeleteUserData(ctx context.Context, uid string) error
	ListSubscriptions(ctx context.Context, uid string) ([]models.SubscriptionRecord, error)
}

// OTP контракт клиента одноразовых кодов.
type OTP interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// Coordinator координатор эффектов среза identity.
type Coordinator struct {
	log    *slog.Logger
	disp   Dispatcher
	auth   Auth
	docs   Docs
	otp    OTP
	runner *runner.Runner
}

// New создает координатор эффектов identity.
func New(log *slog.Logger, disp Dispatcher, auth Auth, docs Docs, otpClient OTP, r *runner.Runner) *Coordinator {
	return &Coordinator{
		log:    log,
		disp:   disp,
		auth:   auth,
		docs:   docs,
		otp:    otpClient,
		runner: r,
	}
}

// Handle реагирует на зафиксированные намерения среза identity.
// Вызывается синхронно из цикла диспетчеризации, внешние вызовы
// выполняются в отдельных горутинах.
func (c *Coordinator) Handle(in store.Intent, st store.State) {
	switch in := in.(type) {
	case idn.SignUpRequest:
		go c.signUp(in)
	case idn.SignInRequest:
		go c.signIn(in)
	case idn.FederatedSignInRequest:
		go c.federatedSignIn(in)
	case idn.SignOutRequest:
		go c.disp.ResetSnapshots(st.Identity.Language)
	case idn.SignUpSuccess:
		c.disp.Dispatch(idn.FetchUserRequest{UID: in.User.UID})
	case idn.SignInSuccess:
		c.disp.Dispatch(idn.FetchUserRequest{UID: in.User.UID})
	case idn.FederatedSignInSuccess:
		c.disp.Dispatch(idn.FetchUserRequest{UID: in.User.UID})
	case idn.FetchUserRequest:
		go c.fetchUser(in)
	case idn.UpdateProfileRequest:
		go c.updateProfile(in, st)
	case idn.SendPasswordResetRequest:
		go c.sendPasswordReset(in)
	case idn.DeleteAccountRequest:
		go c.deleteAccount(in, st)
	case idn.SendOTPRequest:
		go c.sendOTP(in)
	case idn.VerifyOTPRequest:
		go c.verifyOTP(in, st)
	case idn.SaveRemindersRequest:
		go c.saveReminders(in, st)
	}
}

func (c *Coordinator) signUp(in idn.SignUpRequest) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryAuth)

	res, err := c.auth.CreateAccount(ctx, in.Email, in.Password, in.Name)
	if !c.runner.Latest(categoryAuth, seq) {
		return
	}
	if err != nil {
		c.log.Warn("sign up failed", sl.Err(err))
		c.disp.Dispatch(idn.SignUpFailure{Message: authMessage(err)})
		return
	}

	if err = c.docs.SaveUserDoc(ctx, models.UserDoc{
		UID:      res.Session.UID,
		Email:    res.Session.Email,
		Name:     res.Session.DisplayName,
		Provider: res.Session.Provider,
	}); err != nil {
		c.log.Warn("failed to save user doc after sign up", sl.Err(err))
	}
	c.disp.Dispatch(idn.SignUpSuccess{User: res.Session})
}

func (c *Coordinator) signIn(in idn.SignInRequest) {
	seq := c.runner.Begin(categoryAuth)

	res, err := c.auth.SignIn(context.Background(), in.Email, in.Password)
	if !c.runner.Latest(categoryAuth, seq) {
		return
	}
	if err != nil {
		c.log.Warn("sign in failed", sl.Err(err))
		c.disp.Dispatch(idn.SignInFailure{Message: authMessage(err)})
		return
	}
	c.disp.Dispatch(idn.SignInSuccess{User: res.Session})
}

func (c *Coordinator) federatedSignIn(in idn.FederatedSignInRequest) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryAuth)

	res, err := c.auth.SignInWithCredential(ctx, in.Provider, in.Subject, in.Email, in.Name, in.PhotoRef)
	if !c.runner.Latest(categoryAuth, seq) {
		return
	}
	if err != nil {
		c.log.Warn("federated sign in failed", sl.Err(err),
			slog.String("provider", string(in.Provider)))
		c.disp.Dispatch(idn.FederatedSignInFailure{Message: authMessage(err)})
		return
	}

	if err = c.docs.SaveUserDoc(ctx, models.UserDoc{
		UID:      res.Session.UID,
		Email:    res.Session.Email,
		Name:     res.Session.DisplayName,
		PhotoRef: res.Session.PhotoRef,
		Provider: res.Session.Provider,
	}); err != nil {
		c.log.Warn("failed to save user doc after federated sign in", sl.Err(err))
	}
	c.disp.Dispatch(idn.FederatedSignInSuccess{User: res.Session})
}

func (c *Coordinator) fetchUser(in idn.FetchUserRequest) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryFetchUser)

	doc, err := c.docs.GetUserDoc(ctx, in.UID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		if c.runner.Latest(categoryFetchUser, seq) {
			c.log.Warn("failed to fetch user doc", sl.Err(err))
			c.disp.Dispatch(idn.FetchUserFailure{Message: "Failed to load profile"})
		}
		return
	}
	if doc == nil {
		// Документ ещё не создан: первый вход на новом устройстве.
		doc = &models.UserDoc{UID: in.UID}
	}

	subs, err := c.docs.ListSubscriptions(ctx, in.UID)
	if err != nil {
		c.log.Warn("failed to list user subscriptions", sl.Err(err))
	}

	if !c.runner.Latest(categoryFetchUser, seq) {
		return
	}
	c.disp.Dispatch(idn.FetchUserSuccess{Doc: *doc, Subscriptions: subs})
}

func (c *Coordinator) updateProfile(in idn.UpdateProfileRequest, st store.State) {
	if st.Identity.User == nil {
		c.disp.Dispatch(idn.UpdateProfileFailure{Message: "Not signed in"})
		return
	}
	seq := c.runner.Begin(categoryUpdateProfile)

	err := c.docs.UpdateProfile(context.Background(), st.Identity.User.UID, in.Update)
	if !c.runner.Latest(categoryUpdateProfile, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to update profile", sl.Err(err))
		c.disp.Dispatch(idn.UpdateProfileFailure{Message: "Failed to update profile"})
		return
	}
	c.disp.Dispatch(idn.UpdateProfileSuccess{Update: in.Update})
}

func (c *Coordinator) sendPasswordReset(in idn.SendPasswordResetRequest) {
	seq := c.runner.Begin(categoryPasswordReset)

	err := c.auth.SendPasswordReset(context.Background(), in.Email)
	if !c.runner.Latest(categoryPasswordReset, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to send password reset", sl.Err(err))
		c.disp.Dispatch(idn.SendPasswordResetFailure{Message: "Failed to send reset email"})
		return
	}
	c.disp.Dispatch(idn.SendPasswordResetSuccess{})
}

func (c *Coordinator) deleteAccount(in idn.DeleteAccountRequest, st store.State) {
	ctx := context.Background()
	if st.Identity.User == nil {
		c.disp.Dispatch(idn.DeleteAccountFailure{Message: "Not signed in"})
		return
	}
	uid := st.Identity.User.UID
	seq := c.runner.Begin(categoryDeleteAccount)

	if err := c.auth.Reauthenticate(ctx, uid, in.Password); err != nil {
		if c.runner.Latest(categoryDeleteAccount, seq) {
			c.log.Warn("reauthentication failed before account deletion", sl.Err(err))
			c.disp.Dispatch(idn.DeleteAccountFailure{Message: authMessage(err)})
		}
		return
	}
	if err := c.docs.DeleteUserData(ctx, uid); err != nil {
		if c.runner.Latest(categoryDeleteAccount, seq) {
			c.log.Error("failed to delete user data", sl.Err(err))
			c.disp.Dispatch(idn.DeleteAccountFailure{Message: "Failed to delete account"})
		}
		return
	}
	if err := c.auth.DeleteAccount(ctx, uid); err != nil {
		if c.runner.Latest(categoryDeleteAccount, seq) {
			c.log.Error("failed to delete account", sl.Err(err))
			c.disp.Dispatch(idn.DeleteAccountFailure{Message: "Failed to delete account"})
		}
		return
	}
	if !c.runner.Latest(categoryDeleteAccount, seq) {
		return
	}

	c.disp.Dispatch(idn.DeleteAccountSuccess{})
	c.disp.ResetSnapshots(st.Identity.Language)
}

func (c *Coordinator) sendOTP(in idn.SendOTPRequest) {
	seq := c.runner.Begin(categorySendOTP)

	err := c.otp.Send(context.Background(), in.Email)
	if !c.runner.Latest(categorySendOTP, seq) {
		return
	}
	if err != nil {
		if errors.Is(err, otp.ErrTooSoon) {
			c.disp.Dispatch(idn.SendOTPFailure{Message: "Please wait before requesting another code"})
			return
		}
		c.log.Warn("failed to send otp", sl.Err(err))
		c.disp.Dispatch(idn.SendOTPFailure{Message: "Failed to send verification code"})
		return
	}
	c.disp.Dispatch(idn.SendOTPSuccess{})
}

func (c *Coordinator) verifyOTP(in idn.VerifyOTPRequest, st store.State) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryVerifyOTP)

	err := c.otp.Verify(ctx, in.Email, in.OTP)
	if !c.runner.Latest(categoryVerifyOTP, seq) {
		return
	}
	if err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			c.disp.Dispatch(idn.VerifyOTPFailure{Message: "Invalid verification code"})
			return
		}
		c.log.Warn("failed to verify otp", sl.Err(err))
		c.disp.Dispatch(idn.VerifyOTPFailure{Message: "Failed to verify code"})
		return
	}

	if st.Identity.User != nil {
		if err := c.auth.MarkEmailVerified(ctx, st.Identity.User.UID); err != nil {
			c.log.Warn("failed to mark email verified", sl.Err(err))
		}
	}
	c.disp.Dispatch(idn.VerifyOTPSuccess{})
}

func (c *Coordinator) saveReminders(in idn.SaveRemindersRequest, st store.State) {
	if st.Identity.User == nil {
		c.disp.Dispatch(idn.SaveRemindersFailure{Message: "Not signed in"})
		return
	}
	seq := c.runner.Begin(categoryReminders)

	err := c.docs.SaveReminders(context.Background(), st.Identity.User.UID, in.Settings)
	if !c.runner.Latest(categoryReminders, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to save reminders", sl.Err(err))
		c.disp.Dispatch(idn.SaveRemindersFailure{Message: "Failed to save reminders"})
		return
	}
	c.disp.Dispatch(idn.SaveRemindersSuccess{Settings: in.Settings})
}

// authMessage переводит ошибки провайдера в сообщение для пользователя.
func authMessage(err error) string {
	switch {
	case errors.Is(err, authpg.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, authpg.ErrEmailTaken):
		return "Email already registered"
	case errors.Is(err, authpg.ErrAccountNotFound):
		return "Account not found"
	default:
		return "Something went wrong, please try again"
	}
}
