package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linehistory/generator"
)

const crlfContent = "2020/02/29(土)\r\n" +
	"13:00\tC\t衛生面に気をつけよう\r\n" +
	"13:00\tA\tおはよう\r\n" +
	"13:01\tB\tOK\r\n" +
	"\r\n" +
	"2023/07/21(金)\r\n" +
	"01:00\tD\t夏だね\r\n" +
	"01:01\tA\t\"過去の会話でも見ようか\n" +
	"2017/01/01(日)\n" +
	"00:00\tA\tあけおめ\n" +
	"000:01\tB\tおめでとう\n" +
	"\n" +
	"2020/02/29(土)\n" +
	"13:00\tC\t同じ日付\n" +
	"13:00\tA\tおなじ\n" +
	"13:01\tB\tOK\"\r\n" +
	"01:02\tB\tUnit Test はクリアできたかな？\r\n" +
	"\r\n" +
	"2023/07/31(月)\r\n" +
	"00:00\tname\t\"\r\n" +
	"\r\n" +
	"\"\r\n" +
	"00:01\tname\ta\r\n" +
	"\r\n" +
	"2023/08/01(火)\r\n" +
	"06:00\tA\t夏だね2\r\n" +
	"06:11\tD\tおはよう\r\n"

func chatCounts(h *History) map[string]int {
	counts := map[string]int{}
	for _, d := range h.Days() {
		counts[d.Date.String()] = len(d.Chats)
	}
	return counts
}

func TestParseCRLF(t *testing.T) {
	h, err := Parse(crlfContent)
	require.NoError(t, err)

	assert.Equal(t, 4, h.Len())
	want := map[string]int{
		"2020/02/29": 3,
		"2023/07/21": 3,
		"2023/07/31": 2,
		"2023/08/01": 2,
	}
	if diff := cmp.Diff(want, chatCounts(h)); diff != "" {
		t.Errorf("chat counts mismatch (-want +got):\n%s", diff)
	}

	day, err := h.SearchByDate(Date{2023, 7, 21})
	require.NoError(t, err)
	quoted := day.Chats[1]
	assert.Equal(t, Clock{1, 1}, quoted.Time)
	assert.Equal(t, "A", quoted.SenderName())
	assert.Len(t, quoted.MessageLines, 9)
	assert.Equal(t, "\"過去の会話でも見ようか", quoted.MessageLines[0])
	assert.Equal(t, "13:01\tB\tOK\"", quoted.MessageLines[8])
	assert.True(t, strings.HasPrefix(quoted.Message(), "過去の会話でも見ようか\n2017/01/01(日)"))

	day, err = h.SearchByDate(Date{2023, 7, 31})
	require.NoError(t, err)
	assert.Equal(t, []string{`"`, "", `"`}, day.Chats[0].MessageLines)
}

func TestParseLFWithHeader(t *testing.T) {
	input := "[LINE] MyGroupのトーク履歴\n保存日時：2024/01/01 00:00\n\n" +
		"2024/02/01(木)\n" +
		"00:00\tA\tおはよう\n" +
		"00:05\t\tBがグループに参加しました。\n" +
		"\n" +
		"2024/02/29(木)\n" +
		"23:59\tA\t\"おやすみ\n" +
		"また明日\"\n"

	h, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, []Date{{2024, 2, 1}, {2024, 2, 29}}, h.Dates())

	day, err := h.SearchByDate(Date{2024, 2, 1})
	require.NoError(t, err)
	require.Len(t, day.Chats, 2)
	assert.Nil(t, day.Chats[1].Sender)
	assert.Equal(t, "", day.Chats[1].SenderName())

	day, err = h.SearchByDate(Date{2024, 2, 29})
	require.NoError(t, err)
	require.Len(t, day.Chats, 1)
	assert.Equal(t, "おやすみ\nまた明日", day.Chats[0].Message())
}

func TestParseEmpty(t *testing.T) {
	h, err := Parse("")
	require.Error(t, err)
	assert.True(t, h.IsEmpty())

	var pe ParseErrors
	require.True(t, errors.As(err, &pe))
	require.Len(t, pe, 1)
	assert.Equal(t, EmptyFile, pe[0].Kind)
}

func TestParseHeaderOnly(t *testing.T) {
	h, err := Parse("[LINE] xのトーク履歴\n保存日時：2024/01/01 00:00\n\n")
	require.NoError(t, err)
	assert.True(t, h.IsEmpty())
}

func TestParseErrorsArePartial(t *testing.T) {
	input := "2024/01/01(月)\n" +
		"stray line\n" +
		"00:00\tA\tok\n" +
		"25:00\tA\tbad hour\n" +
		"continued after bad entry\n" +
		"00:01\tonly-sender\n" +
		"\n" +
		"2024/13/01(x)\n" +
		"00:02\tB\tmerged into previous day\n"

	h, err := Parse(input)
	require.Error(t, err)

	var pe ParseErrors
	require.True(t, errors.As(err, &pe))
	kinds := make([]ErrorKind, len(pe))
	for i, e := range pe {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []ErrorKind{
		ContinuationBeforeEntry,
		InvalidTime,
		ContinuationBeforeEntry,
		InvalidEntry,
		InvalidDate,
	}, kinds)
	assert.Equal(t, 2, pe[0].Line)

	var single *ParseError
	require.True(t, errors.As(err, &single))
	assert.Equal(t, ContinuationBeforeEntry, single.Kind)

	day, derr := h.SearchByDate(Date{2024, 1, 1})
	require.NoError(t, derr)
	require.Len(t, day.Chats, 2)
	assert.Equal(t, "ok", day.Chats[0].Message())
	assert.Equal(t, "merged into previous day", day.Chats[1].Message())
	assert.Contains(t, err.Error(), "5 parse errors")

	ignored, ierr := IgnoreErrors(h, err)
	assert.NoError(t, ierr)
	assert.Same(t, h, ignored)
}

func TestParseEntryBeforeDate(t *testing.T) {
	h, err := Parse("[LINE] xのトーク履歴\n保存日時：2024/01/01 00:00\n\n00:00\tA\tno date yet\n")
	require.Error(t, err)
	assert.True(t, h.IsEmpty())

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, Internal, pe.Kind)
}

func TestParseDuplicateDatesMerge(t *testing.T) {
	input := "2024/01/01(月)\n00:00\tA\tfirst\n\n2024/01/01(月)\n00:01\tB\tsecond\n"

	h, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, 1, h.Len())

	day, err := h.SearchByDate(Date{2024, 1, 1})
	require.NoError(t, err)
	assert.Len(t, day.Chats, 2)
}

func TestParseGeneratedFixture(t *testing.T) {
	for _, newline := range []string{"\n", "\r\n"} {
		opts := generator.DefaultOptions()
		opts.Days = 50
		opts.Newline = newline
		path := filepath.Join(t.TempDir(), "history.txt")

		_, err := generator.GenerateFile(context.Background(), path, opts)
		require.NoError(t, err)

		h, err := ParseFile(path)
		require.NoError(t, err)
		require.Equal(t, 50, h.Len())
		assert.Equal(t, opts.ExpectedChats(), h.ChatCount())

		for _, day := range h.Days() {
			require.Len(t, day.Chats, 101)
			last := day.Chats[100]
			assert.Equal(t, Clock{1, 39}, last.Time)
			assert.Len(t, last.MessageLines, 9)
			assert.Equal(t, "MESSAGE LINE 0\nMESSAGE LINE 1\nMESSAGE LINE 2\nMESSAGE LINE 3\n"+
				"MESSAGE LINE 4\nMESSAGE LINE 5\nMESSAGE LINE 6\nMESSAGE LINE 7\nMESSAGE LINE 8",
				last.Message())
		}
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseStrayCRInLFExport(t *testing.T) {
	input := "2024/01/01(月)\n" +
		"00:00\tA\thello\r\n" +
		"00:01\tB\tworld\n" +
		"\n" +
		"2024/01/02(火)\n" +
		"00:00\tA\tx\n"

	h, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, []Date{{2024, 1, 1}, {2024, 1, 2}}, h.Dates())

	day, err := h.SearchByDate(Date{2024, 1, 1})
	require.NoError(t, err)
	require.Len(t, day.Chats, 2)
	assert.Equal(t, []string{"hello"}, day.Chats[0].MessageLines)
	assert.Equal(t, []string{"world"}, day.Chats[1].MessageLines)

	day, err = h.SearchByDate(Date{2024, 1, 2})
	require.NoError(t, err)
	require.Len(t, day.Chats, 1)
	assert.Equal(t, "x", day.Chats[0].Message())
}

func TestParseCRLFDateRecordWithLF(t *testing.T) {
	input := "2024/01/01(月)\r\n" +
		"00:00\tA\ta\r\n" +
		"\r\n" +
		"2024/01/02(火)\n" +
		"00:00\tB\tb\n" +
		"00:01\tC\tc\r\n"

	h, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, 3, h.ChatCount())

	day, err := h.SearchByDate(Date{2024, 1, 2})
	require.NoError(t, err)
	require.Len(t, day.Chats, 2)
	assert.Equal(t, "B", day.Chats[0].SenderName())
	assert.Equal(t, []string{"b"}, day.Chats[0].MessageLines)
	assert.Equal(t, "C", day.Chats[1].SenderName())
}
