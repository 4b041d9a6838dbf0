// Package models содержит доменные структуры дневника благополучия:
// сессию пользователя, записи дневника, карточки раздела "Explore",
// продукты подписки и вспомогательные типы для данных из внешних источников.
package models

// Provider обозначает способ аутентификации пользователя.
type Provider string

// Поддерживаемые провайдеры аутентификации.
const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderApple    Provider = "apple"
)

// Значения напоминаний по умолчанию: утро 09:00, вечер 20:00, оба включены.
const (
	DefaultMorningHour   = 9
	DefaultMorningMinute = 0
	DefaultEveningHour   = 20
	DefaultEveningMinute = 0
)

// Session представляет аутентифицированного пользователя приложения.
// Активна не более одной сессии; nil означает гостя.
type Session struct {
	UID           string    `json:"uid"`           // Уникальный идентификатор пользователя
	Email         string    `json:"email"`         // Электронная почта
	DisplayName   string    `json:"displayName"`   // Отображаемое имя
	PhotoRef      string    `json:"photoRef"`      // Ссылка на аватар
	Provider      Provider  `json:"provider"`      // Провайдер аутентификации
	EmailVerified bool      `json:"emailVerified"` // Подтверждена ли почта
	Language      string    `json:"language"`      // Предпочитаемый язык интерфейса
	Reminders     Reminders `json:"reminders"`     // Настройки напоминаний
}

// Reminders хранит настройки двух ежедневных напоминаний.
type Reminders struct {
	MorningHour      int  `json:"morningHour"`
	MorningMinute    int  `json:"morningMinute"`
	EveningHour      int  `json:"eveningHour"`
	EveningMinute    int  `json:"eveningMinute"`
	IsMorningEnabled bool `json:"isMorningEnabled"`
	IsEveningEnabled bool `json:"isEveningEnabled"`
}

// DefaultReminders возвращает настройки напоминаний по умолчанию.
func DefaultReminders() Reminders {
	return Reminders{
		MorningHour:      DefaultMorningHour,
		MorningMinute:    DefaultMorningMinute,
		EveningHour:      DefaultEveningHour,
		EveningMinute:    DefaultEveningMinute,
		IsMorningEnabled: true,
		IsEveningEnabled: true,
	}
}

// ReminderPatch описывает настройки напоминаний, пришедшие из внешнего
// хранилища. Поля-указатели позволяют отличить отсутствующее значение
// от нулевого; отсутствующие поля заполняются значениями по умолчанию.
type ReminderPatch struct {
	MorningHour      *int  `json:"morningHour,omitempty"`
	MorningMinute    *int  `json:"morningMinute,omitempty"`
	EveningHour      *int  `json:"eveningHour,omitempty"`
	EveningMinute    *int  `json:"eveningMinute,omitempty"`
	IsMorningEnabled *bool `json:"isMorningEnabled,omitempty"`
	IsEveningEnabled *bool `json:"isEveningEnabled,omitempty"`
}

// NormalizeReminders сводит частичные настройки напоминаний к полным,
// подставляя значения по умолчанию вместо отсутствующих полей.
// Единственное место, где определены правила подстановки.
func NormalizeReminders(patch *ReminderPatch) Reminders {
	r := DefaultReminders()
	if patch == nil {
		return r
	}
	if patch.MorningHour != nil {
		r.MorningHour = *patch.MorningHour
	}
	if patch.MorningMinute != nil {
		r.MorningMinute = *patch.MorningMinute
	}
	if patch.EveningHour != nil {
		r.EveningHour = *patch.EveningHour
	}
	if patch.EveningMinute != nil {
		r.EveningMinute = *patch.EveningMinute
	}
	if patch.IsMorningEnabled != nil {
		r.IsMorningEnabled = *patch.IsMorningEnabled
	}
	if patch.IsEveningEnabled != nil {
		r.IsEveningEnabled = *patch.IsEveningEnabled
	}
	return r
}

// UserDoc описывает документ пользователя во внешнем хранилище.
// Настройки напоминаний приходят частичными и нормализуются на границе
// редьюсера через NormalizeReminders.
type UserDoc struct {
	UID       string         `json:"uid"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	PhotoRef  string         `json:"photoRef,omitempty"`
	Provider  Provider       `json:"provider"`
	Language  string         `json:"language,omitempty"`
	Reminders *ReminderPatch `json:"reminders,omitempty"`
}

// ProfileUpdate описывает частичное обновление профиля пользователя.
// nil-поле означает "не менять".
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	PhotoRef *string `json:"photoRef,omitempty"`
	Language *string `json:"language,omitempty"`
}
