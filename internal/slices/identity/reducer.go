package identity

import "github.com/magabrotheeeer/wellbeing-journal/internal/models"

// State состояние среза identity. Значение User == nil означает гостя.
type State struct {
	User                  *models.Session             `json:"user"`
	UserSubscriptions     []models.SubscriptionRecord `json:"userSubscriptions"`
	IsLoading             bool                        `json:"isLoading"`
	Err                   string                      `json:"error"`
	IsWelcomeShown        bool                        `json:"isWelcomeShown"`
	Language              string                      `json:"language"`
	IsOTPLoading          bool                        `json:"isOtpLoading"`
	OTPErr                string                      `json:"otpError"`
	OTPSentSuccess        bool                        `json:"otpSentSuccess"`
	OTPVerifiedSuccess    bool                        `json:"otpVerifiedSuccess"`
	IsLoadingReminderSave bool                        `json:"isLoadingReminderSave"`
	ReminderSaveErr       string                      `json:"reminderSaveError"`
}

// Initial возвращает начальное состояние среза.
func Initial() State {
	return State{}
}

// Reduce чистая функция перехода среза identity.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case SignUpRequest:
		s.IsLoading = true
		s.IsWelcomeShown = false
		s.Err = ""
	case SignUpSuccess:
		s = sessionEstablished(s, in.User)
	case SignUpFailure:
		s.IsLoading = false
		s.Err = in.Message
	case SignInRequest:
		s.IsLoading = true
		s.Err = ""
	case SignInSuccess:
		s = sessionEstablished(s, in.User)
	case SignInFailure:
		s.IsLoading = false
		s.Err = in.Message
	case FederatedSignInRequest:
		s.IsLoading = true
		s.Err = ""
	case FederatedSignInSuccess:
		s = sessionEstablished(s, in.User)
	case FederatedSignInFailure:
		s.IsLoading = false
		s.Err = in.Message
	case SignOutRequest:
		s = signedOut(s)
	case FetchUserRequest:
		s.IsLoading = true
		s.Err = ""
	case FetchUserSuccess:
		s.IsLoading = false
		s.User = mergeFetched(s.User, in.Doc)
		s.UserSubscriptions = in.Subscriptions
		s.Language = in.Doc.Language
	case FetchUserFailure:
		s.IsLoading = false
		s.Err = in.Message
	case UpdateProfileRequest:
		s.IsLoading = true
		s.Err = ""
	case UpdateProfileSuccess:
		s.IsLoading = false
		s.User = mergeUpdate(s.User, in.Update)
		if in.Update.Language != nil {
			s.Language = *in.Update.Language
		}
	case UpdateProfileFailure:
		s.IsLoading = false
		s.Err = in.Message
	case SendPasswordResetRequest:
		s.IsLoading = true
		s.Err = ""
	case SendPasswordResetSuccess:
		s.IsLoading = false
	case SendPasswordResetFailure:
		s.IsLoading = false
		s.Err = in.Message
	case DeleteAccountRequest:
		s.IsLoading = true
		s.Err = ""
	case DeleteAccountSuccess:
		s = signedOut(s)
	case DeleteAccountFailure:
		s.IsLoading = false
		s.Err = in.Message
	case SetWelcomeShown:
		s.IsWelcomeShown = true
	case SetLanguage:
		s.Language = in.Language
	case SendOTPRequest:
		s.IsOTPLoading = true
		s.OTPErr = ""
		s.OTPSentSuccess = false
		s.OTPVerifiedSuccess = false
	case SendOTPSuccess:
		s.IsOTPLoading = false
		s.OTPSentSuccess = true
	case SendOTPFailure:
		s.IsOTPLoading = false
		s.OTPErr = in.Message
		s.OTPSentSuccess = false
	case VerifyOTPRequest:
		s.IsOTPLoading = true
		s.OTPErr = ""
		s.OTPVerifiedSuccess = false
	case VerifyOTPSuccess:
		s.IsOTPLoading = false
		s.OTPVerifiedSuccess = true
		s.OTPErr = ""
	case VerifyOTPFailure:
		s.IsOTPLoading = false
		s.OTPErr = in.Message
		s.OTPVerifiedSuccess = false
	case ResetOTP:
		s.IsOTPLoading = false
		s.OTPErr = ""
		s.OTPSentSuccess = false
		s.OTPVerifiedSuccess = false
	case SaveRemindersRequest:
		s.IsLoadingReminderSave = true
		s.ReminderSaveErr = ""
	case SaveRemindersSuccess:
		s.IsLoadingReminderSave = false
		s.ReminderSaveErr = ""
		if s.User != nil {
			u := *s.User
			u.Reminders = in.Settings
			s.User = &u
		}
	case SaveRemindersFailure:
		s.IsLoadingReminderSave = false
		s.ReminderSaveErr = in.Message
	}
	return s
}

// sessionEstablished применяет успешный вход любого вида: сохраняет
// сессию и сбрасывает OTP-подсостояние.
func sessionEstablished(s State, user models.Session) State {
	u := user
	s.IsLoading = false
	s.User = &u
	if u.Language != "" {
		s.Language = u.Language
	}
	s.IsOTPLoading = false
	s.OTPErr = ""
	s.OTPSentSuccess = false
	s.OTPVerifiedSuccess = false
	return s
}

// signedOut очищает срез, намеренно сохраняя только язык.
func signedOut(s State) State {
	lang := s.Language
	s = Initial()
	s.Language = lang
	return s
}

// mergeFetched сливает загруженный документ с текущей сессией по полям:
// непустые поля документа перекрывают существующие, настройки
// напоминаний нормализуются значениями по умолчанию.
func mergeFetched(current *models.Session, doc models.UserDoc) *models.Session {
	var u models.Session
	if current != nil {
		u = *current
	}
	if doc.UID != "" {
		u.UID = doc.UID
	}
	if doc.Email != "" {
		u.Email = doc.Email
	}
	if doc.Name != "" {
		u.DisplayName = doc.Name
	}
	if doc.PhotoRef != "" {
		u.PhotoRef = doc.PhotoRef
	}
	if doc.Provider != "" {
		u.Provider = doc.Provider
	}
	u.Language = doc.Language
	u.Reminders = models.NormalizeReminders(doc.Reminders)
	return &u
}

// mergeUpdate применяет частичное обновление профиля к сессии.
func mergeUpdate(current *models.Session, upd models.ProfileUpdate) *models.Session {
	if current == nil {
		return nil
	}
	u := *current
	if upd.Name != nil {
		u.DisplayName = *upd.Name
	}
	if upd.PhotoRef != nil {
		u.PhotoRef = *upd.PhotoRef
	}
	if upd.Language != nil {
		u.Language = *upd.Language
	}
	return &u
}
