// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — упростить формирование структурированных полей лога,
// например, для передачи информации об ошибках.
package sl

import (
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/church-dashboard/internal/stats"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to fetch attendance", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Record возвращает группу "record" с идентификатором и полем некорректной записи,
// если ошибка вызвана входными данными. Иначе возвращается пустой Attr,
// который slog пропускает.
func Record(err error) slog.Attr {
	var perr *stats.ParseError
	if errors.As(err, &perr) {
		return slog.Group("record", slog.String("id", perr.RecordID), slog.String("field", perr.Field))
	}
	var qerr *stats.InvalidQuantityError
	if errors.As(err, &qerr) {
		return slog.Group("record", slog.String("id", qerr.RecordID), slog.String("field", qerr.Field))
	}
	return slog.Attr{}
}
