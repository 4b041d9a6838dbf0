// Package identity содержит срез состояния аутентификации: сессию
// пользователя, её загрузку и слияние, OTP-подтверждение и настройки
// напоминаний. Редьюсер чистый, вся работа с внешними сервисами
// выполняется координатором эффектов.
package identity

import "github.com/magabrotheeeer/wellbeing-journal/internal/models"

// Intent закрытое множество намерений среза identity.
type Intent interface {
	Kind() string
	isIdentity()
}

type intent struct{}

func (intent) isIdentity() {}

// SignUpRequest запрос регистрации по почте и паролю.
type SignUpRequest struct {
	intent
	Email    string
	Password string
	Name     string
}

// SignUpSuccess успешная регистрация, несёт созданную сессию.
type SignUpSuccess struct {
	intent
	User models.Session
}

// SignUpFailure неуспешная регистрация.
type SignUpFailure struct {
	intent
	Message string
}

// SignInRequest запрос входа по почте и паролю.
type SignInRequest struct {
	intent
	Email    string
	Password string
}

// SignInSuccess успешный вход.
type SignInSuccess struct {
	intent
	User models.Session
}

// SignInFailure неуспешный вход.
type SignInFailure struct {
	intent
	Message string
}

// FederatedSignInRequest вход через внешнего провайдера (google/facebook/apple).
// Удостоверение уже проверено SDK платформы; здесь передаются его поля.
type FederatedSignInRequest struct {
	intent
	Provider models.Provider
	Subject  string
	Email    string
	Name     string
	PhotoRef string
}

// FederatedSignInSuccess успешный вход через внешнего провайдера.
type FederatedSignInSuccess struct {
	intent
	User models.Session
}

// FederatedSignInFailure неуспешный вход через внешнего провайдера.
type FederatedSignInFailure struct {
	intent
	Message string
}

// SignOutRequest выход из аккаунта. Редьюсер очищает срез, сохраняя
// только язык; координатор параллельно чистит провайдера и снапшоты.
type SignOutRequest struct{ intent }

// FetchUserRequest запрос документа пользователя и его подписок по идентификатору.
type FetchUserRequest struct {
	intent
	UID string
}

// FetchUserSuccess успешная загрузка документа пользователя.
// Поля сливаются с текущей сессией, настройки напоминаний
// нормализуются на границе редьюсера.
type FetchUserSuccess struct {
	intent
	Doc           models.UserDoc
	Subscriptions []models.SubscriptionRecord
}

// FetchUserFailure неуспешная загрузка документа пользователя.
type FetchUserFailure struct {
	intent
	Message string
}

// UpdateProfileRequest запрос частичного обновления профиля.
type UpdateProfileRequest struct {
	intent
	Update models.ProfileUpdate
}

// UpdateProfileSuccess подтверждённое обновление профиля.
type UpdateProfileSuccess struct {
	intent
	Update models.ProfileUpdate
}

// UpdateProfileFailure неуспешное обновление профиля.
type UpdateProfileFailure struct {
	intent
	Message string
}

// SendPasswordResetRequest запрос письма для сброса пароля.
type SendPasswordResetRequest struct {
	intent
	Email string
}

// SendPasswordResetSuccess письмо для сброса пароля отправлено.
type SendPasswordResetSuccess struct{ intent }

// SendPasswordResetFailure письмо для сброса пароля не отправлено.
type SendPasswordResetFailure struct {
	intent
	Message string
}

// DeleteAccountRequest запрос удаления аккаунта с повторной аутентификацией.
type DeleteAccountRequest struct {
	intent
	Password string
}

// DeleteAccountSuccess аккаунт удалён; срез очищается как при выходе.
type DeleteAccountSuccess struct{ intent }

// DeleteAccountFailure аккаунт не удалён.
type DeleteAccountFailure struct {
	intent
	Message string
}

// SetWelcomeShown отмечает, что приветственный экран показан.
type SetWelcomeShown struct{ intent }

// SetLanguage устанавливает предпочитаемый язык.
type SetLanguage struct {
	intent
	Language string
}

// SendOTPRequest запрос отправки кода подтверждения на почту.
type SendOTPRequest struct {
	intent
	Email string
}

// SendOTPSuccess код подтверждения отправлен.
type SendOTPSuccess struct{ intent }

// SendOTPFailure код подтверждения не отправлен.
type SendOTPFailure struct {
	intent
	Message string
}

// VerifyOTPRequest запрос проверки кода подтверждения.
type VerifyOTPRequest struct {
	intent
	Email string
	OTP   string
}

// VerifyOTPSuccess код подтверждения принят.
type VerifyOTPSuccess struct{ intent }

// VerifyOTPFailure код подтверждения отклонён.
type VerifyOTPFailure struct {
	intent
	Message string
}

// ResetOTP сбрасывает состояние OTP-подтверждения.
type ResetOTP struct{ intent }

// SaveRemindersRequest запрос сохранения настроек напоминаний.
type SaveRemindersRequest struct {
	intent
	Settings models.Reminders
}

// SaveRemindersSuccess настройки напоминаний сохранены.
type SaveRemindersSuccess struct {
	intent
	Settings models.Reminders
}

// SaveRemindersFailure настройки напоминаний не сохранены.
type SaveRemindersFailure struct {
	intent
	Message string
}

// Kind реализации для всех намерений среза.
func (SignUpRequest) Kind() string            { return "identity.signUp.request" }
func (SignUpSuccess) Kind() string            { return "identity.signUp.success" }
func (SignUpFailure) Kind() string            { return "identity.signUp.failure" }
func (SignInRequest) Kind() string            { return "identity.signIn.request" }
func (SignInSuccess) Kind() string            { return "identity.signIn.success" }
func (SignInFailure) Kind() string            { return "identity.signIn.failure" }
func (FederatedSignInRequest) Kind() string   { return "identity.federated.request" }
func (FederatedSignInSuccess) Kind() string   { return "identity.federated.success" }
func (FederatedSignInFailure) Kind() string   { return "identity.federated.failure" }
func (SignOutRequest) Kind() string           { return "identity.signOut.request" }
func (FetchUserRequest) Kind() string         { return "identity.fetchUser.request" }
func (FetchUserSuccess) Kind() string         { return "identity.fetchUser.success" }
func (FetchUserFailure) Kind() string         { return "identity.fetchUser.failure" }
func (UpdateProfileRequest) Kind() string     { return "identity.updateProfile.request" }
func (UpdateProfileSuccess) Kind() string     { return "identity.updateProfile.success" }
func (UpdateProfileFailure) Kind() string     { return "identity.updateProfile.failure" }
func (SendPasswordResetRequest) Kind() string { return "identity.passwordReset.request" }
func (SendPasswordResetSuccess) Kind() string { return "identity.passwordReset.success" }
func (SendPasswordResetFailure) Kind() string { return "identity.passwordReset.failure" }
func (DeleteAccountRequest) Kind() string     { return "identity.deleteAccount.request" }
func (DeleteAccountSuccess) Kind() string     { return "identity.deleteAccount.success" }
func (DeleteAccountFailure) Kind() string     { return "identity.deleteAccount.failure" }
func (SetWelcomeShown) Kind() string          { return "identity.setWelcomeShown" }
func (SetLanguage) Kind() string              { return "identity.setLanguage" }
func (SendOTPRequest) Kind() string           { return "identity.sendOTP.request" }
func (SendOTPSuccess) Kind() string           { return "identity.sendOTP.success" }
func (SendOTPFailure) Kind() string           { return "identity.sendOTP.failure" }
func (VerifyOTPRequest) Kind() string         { return "identity.verifyOTP.request" }
func (VerifyOTPSuccess) Kind() string         { return "identity.verifyOTP.success" }
func (VerifyOTPFailure) Kind() string         { return "identity.verifyOTP.failure" }
func (ResetOTP) Kind() string                 { return "identity.resetOTP" }
func (SaveRemindersRequest) Kind() string     { return "identity.saveReminders.request" }
func (SaveRemindersSuccess) Kind() string     { return "identity.saveReminders.success" }
func (SaveRemindersFailure) Kind() string     { return "identity.saveReminders.failure" }
