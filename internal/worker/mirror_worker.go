package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/sheets"
)

// MirrorWorker replays row events from the primary store onto a mirror,
// normally the Google spreadsheet.
type MirrorWorker struct {
	mirror sheets.Store
}

func NewMirrorWorker(mirror sheets.Store) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// HandleRowEvent applies one event. Errors make the message go back to the
// queue; events of an unknown kind are logged and dropped.
func (w *MirrorWorker) HandleRowEvent(ctx context.Context, ev *amqp.RowEvent) error {
	switch ev.Kind {
	case amqp.EventAppend:
		for i, rec := range ev.Records {
			if err := w.mirror.Append(ctx, ev.Table, rec); err != nil {
				return fmt.Errorf("mirror append %s (%d/%d): %w", ev.Table, i+1, len(ev.Records), err)
			}
		}
	case amqp.EventRewrite:
		if err := w.mirror.ClearAndRewrite(ctx, ev.Table, ev.Records); err != nil {
			return fmt.Errorf("mirror rewrite %s: %w", ev.Table, err)
		}
	default:
		slog.WarnContext(ctx, "Dropping row event of unknown kind", "id", ev.ID, "kind", ev.Kind, "table", ev.Table)
		return nil
	}

	slog.InfoContext(ctx, "Mirrored row event",
		"id", ev.ID,
		"kind", ev.Kind,
		"table", ev.Table,
		"records", len(ev.Records))
	return nil
}

// ResyncAll copies every known table from source onto the mirror. It is the
// recovery path for events lost while the worker was down.
func (w *MirrorWorker) ResyncAll(ctx context.Context, source sheets.TableReader) error {
	synced := 0
	for _, name := range sheets.Tables() {
		tbl, err := source.Table(ctx, name)
		if errors.Is(err, sheets.ErrTableNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := w.mirror.ClearAndRewrite(ctx, name, tbl.Records); err != nil {
			return fmt.Errorf("resync %s: %w", name, err)
		}
		synced++
		slog.InfoContext(ctx, "Table resynced", "table", name, "rows", len(tbl.Records))
	}
	slog.InfoContext(ctx, "Resync completed", "tables", synced)
	return nil
}
