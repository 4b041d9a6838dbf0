package authpg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	"github.com/magabrotheeeer/wellbeing-journal/internal/notify"
)

// Ошибки провайдера идентификации.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
)

// Provider хранит учетные записи в PostgreSQL и выдает сессионные токены.
type Provider struct {
	DB     *sql.DB
	tokens *TokenMaker
	mailer notify.Mailer
}

// New создает провайдер идентификации поверх подключения к PostgreSQL.
func New(db *sql.DB, tokens *TokenMaker, mailer notify.Mailer) *Provider {
	return &Provider{
		DB:     db,
		tokens: tokens,
		mailer: mailer,
	}
}

// AuthResult результат успешной аутентификации.
type AuthResult struct {
	Session models.Session
	Token   string
}

// CreateAccount регистрирует учетную запись с паролем и открывает сессию.
func (p *Provider) CreateAccount(ctx context.Context, email, password, name string) (*AuthResult, error) {
	const op = "authpg.CreateAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uid := uuid.NewString()
	query := `INSERT INTO accounts (uid, email, password_hash, provider, display_name, email_verified, created_at)
			  VALUES ($1, $2, $3, $4, $5, false, now())
			  ON CONFLICT (email) DO NOTHING
			  RETURNING uid;`
	var newUID string
	err = p.DB.QueryRowContext(ctx, query, uid, email, string(hashed),
		string(models.ProviderPassword), name).Scan(&newUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p.issue(op, models.Session{
		UID:         newUID,
		Email:       email,
		DisplayName: name,
		Provider:    models.ProviderPassword,
	})
}

// SignIn проверяет пароль и открывает сессию.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "authpg.SignIn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, password_hash, display_name, photo_ref, email_verified
			  FROM accounts
			  WHERE email = $1 AND provider = $2`
	var uid, displayName string
	var passwordHash, photoRef sql.NullString
	var emailVerified bool
	err := p.DB.QueryRowContext(ctx, query, email, string(models.ProviderPassword)).
		Scan(&uid, &passwordHash, &displayName, &photoRef, &emailVerified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !passwordHash.Valid ||
		bcrypt.CompareHashAndPassword([]byte(passwordHash.String), []byte(password)) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return p.issue(op, models.Session{
		UID:           uid,
		Email:         email,
		DisplayName:   displayName,
		PhotoRef:      photoRef.String,
		Provider:      models.ProviderPassword,
		EmailVerified: emailVerified,
	})
}

// SignInWithCredential открывает сессию по внешнему удостоверению
// (Google, Facebook, Apple). Учетная запись создается при первом входе.
func (p *Provider) SignInWithCredential(ctx context.Context, provider models.Provider, subject, email, name, photoRef string) (*AuthResult, error) {
	const op = "authpg.SignInWithCredential"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	uid := uuid.NewString()
	query := `INSERT INTO accounts (uid, email, provider, subject, display_name, photo_ref, email_verified, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, true, now())
			  ON CONFLICT (provider, subject) DO UPDATE SET
			      email        = EXCLUDED.email,
			      display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), accounts.display_name),
			      photo_ref    = COALESCE(NULLIF(EXCLUDED.photo_ref, ''), accounts.photo_ref)
			  RETURNING uid, display_name, photo_ref;`
	var gotUID, gotName string
	var gotPhoto sql.NullString
	if err := p.DB.QueryRowContext(ctx, query, uid, email, string(provider),
		subject, name, photoRef).Scan(&gotUID, &gotName, &gotPhoto); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p.issue(op, models.Session{
		UID:           gotUID,
		Email:         email,
		DisplayName:   gotName,
		PhotoRef:      gotPhoto.String,
		Provider:      provider,
		EmailVerified: true,
	})
}

// Reauthenticate повторно проверяет пароль пользователя перед
// разрушительной операцией.
func (p *Provider) Reauthenticate(ctx context.Context, uid, password string) error {
	const op = "authpg.Reauthenticate"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT password_hash FROM accounts WHERE uid = $1`
	var passwordHash sql.NullString
	err := p.DB.QueryRowContext(ctx, query, uid).Scan(&passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !passwordHash.Valid ||
		bcrypt.CompareHashAndPassword([]byte(passwordHash.String), []byte(password)) != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	return nil
}

// SendPasswordReset создает одноразовый токен сброса и отправляет письмо.
// Для несуществующего адреса письмо не отправляется, но ошибка не
// раскрывается вызывающему.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	const op = "authpg.SendPasswordReset"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var uid string
	err := p.DB.QueryRowContext(ctx,
		`SELECT uid FROM accounts WHERE email = $1 AND provider = $2`,
		email, string(models.ProviderPassword)).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	token := uuid.NewString()
	query := `INSERT INTO password_resets (token, uid, expires_at, created_at)
			  VALUES ($1, $2, $3, now());`
	if _, err = p.DB.ExecContext(ctx, query, token, uid, time.Now().Add(time.Hour)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = p.mailer.Send(ctx, notify.MailMessage{
		To:      email,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Use this code to reset your password: %s", token),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAccount удаляет учетную запись пользователя.
func (p *Provider) DeleteAccount(ctx context.Context, uid string) error {
	const op = "authpg.DeleteAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := p.DB.ExecContext(ctx, `DELETE FROM accounts WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// MarkEmailVerified отмечает почту подтвержденной после проверки кода.
func (p *Provider) MarkEmailVerified(ctx context.Context, uid string) error {
	const op = "authpg.MarkEmailVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := p.DB.ExecContext(ctx,
		`UPDATE accounts SET email_verified = true WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Provider) issue(op string, session models.Session) (*AuthResult, error) {
	token, err := p.tokens.Generate(session.UID, session.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthResult{Session: session, Token: token}, nil
}
