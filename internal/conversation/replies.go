package conversation

import (
	"fmt"
	"strings"

	"ledger-chat-backend/internal/ledger"
)

// Reply templates keep the register of a friendly Korean household assistant.

const (
	replyEmptyMessage     = "메시지가 비어 있어요."
	replyUnknown          = "무슨 뜻인지 잘 모르겠어요."
	replyNeedAmount       = "금액을 알려주세요."
	replyNeedItem         = "항목(상품/가게명)을 알려주세요."
	replyNeedUpdateAmount = "바꿀 금액을 알려주세요."
	replyNoEntries        = "내역이 없어요."
	replyNoLastEntry      = "최근 내역이 없어요."
	replyNoDeleteTarget   = "조건에 맞는 삭제 대상이 없어요."
	replyNoUpdateTarget   = "조건에 맞는 수정 대상이 없어요."
	replyNoDeleteEntries  = "삭제할 내역이 없어요."
	replyDeleteDone       = "삭제 완료했어요."
	replyCancelled        = "취소했어요."
	replySelectCancelled  = "선택을 취소했어요."
	replyConfirmAgain     = "확인/취소 중 하나로 답해주세요. (yes/no)"
	replyNothingToConfirm = "확인할 항목이 없어요."
	replyNothingToSelect  = "선택할 항목이 없어요."
	replyStaleToken       = "이전 요청이 만료됐어요. 처음부터 다시 말씀해 주세요."

	replyInsertFailed = "저장 처리 중 오류가 발생했어요."
	replySelectFailed = "내역 조회 중 오류가 발생했어요."
	replySumFailed    = "합계 계산 중 오류가 발생했어요."
	replyUpdateFailed = "수정 처리 중 오류가 발생했어요."
	replyDeleteFailed = "삭제 처리 중 오류가 발생했어요."
)

func formatEntries(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return replyNoEntries
	}
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d) %s %s %d원 (id:%d)", i+1, e.Date, e.Item, e.Amount, e.ID))
	}
	return strings.Join(lines, "\n")
}

func formatEntry(e ledger.Entry) string {
	return fmt.Sprintf("%s %s %d원", e.Date, e.Item, e.Amount)
}

func replySaved(e ledger.Entry) string {
	return "저장했어요: " + formatEntry(e)
}

func replyBulkSaved(entries []ledger.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e))
	}
	return fmt.Sprintf("%d건 저장했어요.\n%s", len(entries), strings.Join(lines, "\n"))
}

func replyUpdated(e ledger.Entry) string {
	return "수정했어요: " + formatEntry(e)
}

func replySum(date string, total int64) string {
	if date == "" {
		return fmt.Sprintf("전체 총합은 %d원이에요.", total)
	}
	return fmt.Sprintf("%s 총합은 %d원이에요.", date, total)
}

func promptDeleteConfirm(e ledger.Entry) string {
	return "삭제할까요? " + formatEntry(e)
}

func promptSelect(verb string, candidates []ledger.Entry) string {
	return fmt.Sprintf("어느 항목을 %s할까요? id를 알려주세요.\n%s", verb, formatEntries(candidates))
}

func promptSelectAgain(candidates []ledger.Entry) string {
	return "후보 목록에 없는 id예요. 다시 골라주세요.\n" + formatEntries(candidates)
}

func promptSelectID(candidates []ledger.Entry) string {
	return "수정/삭제할 항목의 id를 보내주세요.\n" + formatEntries(candidates)
}
