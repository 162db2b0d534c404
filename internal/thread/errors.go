package thread

import (
	"errors"
	"fmt"

	"github.com/pribylovaa/discussion-service/internal/storage"
)

// Таксономия ошибок движка. Любая ошибка слоя данных сводится к одной из них на границе
// координатора и никогда не уходит в слой отображения «как есть».
var (
	// ErrValidation — исправимая пользователем ошибка ввода; состояние не меняется.
	ErrValidation = errors.New("validation error")
	// ErrAuth — операция требует (другого) пользователя; состояние не меняется.
	ErrAuth = errors.New("auth error")
	// ErrNotFound — цель исчезла на сервере; вид сверяется повторной загрузкой.
	ErrNotFound = errors.New("not found")
	// ErrNetwork — повторяемый сбой транспорта; оптимистичное изменение откатывается.
	ErrNetwork = errors.New("network error")
	// ErrMutationInFlight — по паре (комментарий, операция) уже есть запрос в полёте.
	ErrMutationInFlight = errors.New("mutation already in flight")
	// ErrClosed — область закрыта или сменена, ответ отброшен.
	ErrClosed = errors.New("session closed")
	// ErrNotReady — первичная загрузка не завершена (или завершилась ошибкой).
	ErrNotReady = errors.New("session not ready")
)

// classify сводит ошибку хранилища к таксономии движка, сохраняя исходную в цепочке.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isEngineError(err):
		return err
	case errors.Is(err, storage.ErrInvalidArgument), errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, storage.ErrUnauthenticated), errors.Is(err, storage.ErrPermissionDenied):
		return fmt.Errorf("%w: %w", ErrAuth, err)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
}

func isEngineError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrAuth, ErrNotFound, ErrNetwork,
		ErrMutationInFlight, ErrClosed, ErrNotReady,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
