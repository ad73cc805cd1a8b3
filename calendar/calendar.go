package calendar

import (
	"fmt"
	"time"
)

// DateLayout は日付文字列の共通フォーマット (YYYYMMDD) です。
const DateLayout = "20060102"

var jst *time.Location

func init() {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		// tzdataが無い環境向けフォールバック (JSTは夏時間なし固定+9h)
		loc = time.FixedZone("JST", 9*60*60)
	}
	jst = loc
}

// Location は店舗の営業カレンダーのタイムゾーンを返します。
func Location() *time.Location {
	return jst
}

// Today は営業カレンダー上の今日を YYYYMMDD で返します。
func Today() string {
	return time.Now().In(jst).Format(DateLayout)
}

// Yesterday は営業カレンダー上の昨日を YYYYMMDD で返します。
func Yesterday() string {
	return time.Now().In(jst).AddDate(0, 0, -1).Format(DateLayout)
}

// Parse は YYYYMMDD 文字列を営業カレンダーの時刻に変換します。
func Parse(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, jst)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// AddDays は日付に n 日を加算します。経過時間ではなく暦日で計算します。
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// DatesBetween は start から end まで (両端含む) の暦日を昇順で返します。
// start > end の場合は空列を返します。ゼロ長のチェーンは正常な縮退であり
// エラーではありません。
func DatesBetween(start, end string) ([]string, error) {
	s, err := Parse(start)
	if err != nil {
		return nil, err
	}
	e, err := Parse(end)
	if err != nil {
		return nil, err
	}

	var dates []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}
