// Package store реализует единое дерево состояния приложения с
// последовательной обработкой намерений и сквозной записью снапшотов
// части срезов во внешнее хранилище.
//
// Намерения обрабатываются строго по одному в порядке поступления;
// редьюсеры срезов синхронны и не выполняют ввод-вывод. Координаторы
// эффектов подписываются на зафиксированные пары (намерение, состояние)
// и возвращают результаты внешних вызовов обратно в ту же очередь.
package store

import (
	"github.com/magabrotheeeer/wellbeing-journal/internal/slices/diary"
	"github.com/magabrotheeeer/wellbeing-journal/internal/slices/explore"
	"github.com/magabrotheeeer/wellbeing-journal/internal/slices/identity"
	"github.com/magabrotheeeer/wellbeing-journal/internal/slices/purchase"
)

// Intent описательная запись о событии приложения. Конкретные намерения
// определяются срезами; системные намерения определены в этом пакете.
type Intent interface {
	Kind() string
}

// Foreground системное намерение: приложение вернулось на передний план.
// Ни один срез его не обрабатывает, но политика напоминаний по нему
// перепроверяет расписание.
type Foreground struct{}

// Kind возвращает тип намерения.
func (Foreground) Kind() string { return "system.foreground" }

// State корневое дерево состояния из четырёх независимых срезов.
type State struct {
	Identity identity.State `json:"identity"`
	Diary    diary.State    `json:"diary"`
	Explore  explore.State  `json:"explore"`
	Purchase purchase.State `json:"purchase"`
}

// InitialState возвращает начальное дерево состояния.
func InitialState() State {
	return State{
		Identity: identity.Initial(),
		Diary:    diary.Initial(),
		Explore:  explore.Initial(),
		Purchase: purchase.Initial(),
	}
}

// Reduce направляет намерение в редьюсер владеющего среза.
// Неизвестные намерения не меняют состояние.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case identity.Intent:
		s.Identity = identity.Reduce(s.Identity, in)
	case diary.Intent:
		s.Diary = diary.Reduce(s.Diary, in)
	case explore.Intent:
		s.Explore = explore.Reduce(s.Explore, in)
	case purchase.Intent:
		s.Purchase = purchase.Reduce(s.Purchase, in)
	}
	return s
}
