package models

import "strings"

// Categories фиксированный набор категорий раздела "Explore".
// В состоянии и хранилище категории хранятся в нижнем регистре.
var Categories = []string{"Recommended", "Grateful", "Breathe", "Calm"}

// CategoryKey приводит название категории к ключу состояния.
func CategoryKey(category string) string {
	return strings.ToLower(category)
}

// CardText переводимая часть карточки для одного языка.
type CardText struct {
	Title      string `json:"title"`
	Subheading string `json:"subheading"`
	Body       string `json:"body"`
}

// Card неизменяемая контентная карточка раздела "Explore".
// Принадлежит ровно одной категории. Признак "разблокирована" не хранится:
// первая карточка категории всегда открыта, остальные требуют подписки.
type Card struct {
	ID              string              `json:"id"`
	Category        string              `json:"category"`
	Translations    map[string]CardText `json:"translations"`
	BackgroundColor string              `json:"backgroundColor"`
	ImageRef        string              `json:"imageRef,omitempty"`
}

// Text возвращает перевод карточки для языка lang, откатываясь на английский.
func (c Card) Text(lang string) CardText {
	if t, ok := c.Translations[lang]; ok {
		return t
	}
	return c.Translations["en"]
}
