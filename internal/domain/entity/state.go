package entity

// StateKind вариант состояния сессии распознавания
type StateKind string

const (
	StateIdle    StateKind = "idle"    // Ничего не запускалось
	StateLoading StateKind = "loading" // Идёт получение и распознавание
	StateSuccess StateKind = "success" // Растение распознано
	StateError   StateKind = "error"   // Попытка завершилась ошибкой
)

// GenericErrorMessage единственный текст ошибки, который видит пользователь.
const GenericErrorMessage = "An error occurred while identifying the plant. Please try again."

// SessionState — текущее состояние сессии. Активен ровно один вариант.
type SessionState struct {
	Kind          StateKind
	AcquisitionID string
	Record        *PlantRecord // только для StateSuccess
	Image         *RawImage    // ссылка для отображения, только для StateSuccess
	Message       string       // только для StateError
}

// Idle начальное состояние.
func Idle() SessionState {
	return SessionState{Kind: StateIdle}
}

// Loading состояние запущенной попытки.
func Loading(acquisitionID string) SessionState {
	return SessionState{Kind: StateLoading, AcquisitionID: acquisitionID}
}

// Success состояние с результатом и изображением, которое его дало.
func Success(acquisitionID string, record PlantRecord, image RawImage) SessionState {
	return SessionState{
		Kind:          StateSuccess,
		AcquisitionID: acquisitionID,
		Record:        &record,
		Image:         &image,
	}
}

// Failed состояние ошибки, всегда с безопасным для пользователя текстом.
func Failed(acquisitionID string) SessionState {
	return SessionState{Kind: StateError, AcquisitionID: acquisitionID, Message: GenericErrorMessage}
}

// Terminal сообщает, завершена ли попытка.
func (s SessionState) Terminal() bool {
	return s.Kind == StateSuccess || s.Kind == StateError
}

// CanTransition проверяет допустимость перехода. В Idle вернуться нельзя.
func CanTransition(from, to StateKind) bool {
	switch to {
	case StateLoading:
		return true
	case StateSuccess, StateError:
		return from == StateLoading
	default:
		return false
	}
}
