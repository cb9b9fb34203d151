package catalog

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tormodhaugland/cim/internal/model"
)

// DetailUnavailable replaces the description when the detail fetch fails.
const DetailUnavailable = "Description not available."

// OpenDetail opens the modal on id with the fields already known and returns
// the command that fetches the extended detail. Ids not in the list are ignored.
func (s Store) OpenDetail(id string) (Store, tea.Cmd) {
	item, ok := s.state.Lookup(id)
	if !ok {
		return s, nil
	}

	s.detailSeq++
	s.state.Modal = ModalState{Open: true, CurrentItem: &item}

	seq := s.detailSeq
	backend := s.backend
	timeout := s.opts.RequestTimeout
	return s, func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		record, err := backend.FetchDetail(ctx, id)
		return DetailFetchedMsg{Seq: seq, ItemID: id, Record: record, Err: err}
	}
}

// CloseDetail closes the modal and drops whatever it showed.
func (s Store) CloseDetail() Store {
	s.state.Modal = ModalState{}
	return s
}

func (s Store) detailFetched(msg DetailFetchedMsg) Store {
	// Failures are reported even when the modal has moved on; only the
	// modal write below is guarded.
	if msg.Err != nil {
		err := &DetailError{ItemID: msg.ItemID, Err: msg.Err}
		s.logger.Warn("detail fetch failed", zap.String("item", msg.ItemID), zap.Error(msg.Err))
		s.notifier.Notify("Details unavailable", err.Error(), SeverityError)
	}

	modal := s.state.Modal
	if !modal.Open || modal.CurrentItem == nil {
		s.logger.Debug("detail response after modal closed", zap.String("item", msg.ItemID))
		return s
	}
	if s.opts.DiscardStaleDetail && (msg.Seq != s.detailSeq || modal.CurrentItem.ID != msg.ItemID) {
		s.logger.Debug("discarding stale detail response",
			zap.String("item", msg.ItemID),
			zap.Uint64("seq", msg.Seq),
			zap.Uint64("latest", s.detailSeq))
		return s
	}

	detail := model.ItemDetail{Description: DetailUnavailable}
	if msg.Err == nil {
		detail = msg.Record.Detail()
	}

	modal.CurrentDetail = &detail
	s.state.Modal = modal
	return s
}
