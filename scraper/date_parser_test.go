package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateToken(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want *string
	}{
		{"single chinese date", "2022年11月15日", strPtr("2022-11-15")},
		{"pads month and day", "2019年3月1日", strPtr("2019-03-01")},
		{"second of two dates wins", "2021年01月01日 2022年11月15日", strPtr("2022-11-15")},
		{"second of three dates wins", "2020年1月1日<br>2021年2月2日<br>2022年3月3日", strPtr("2021-02-02")},
		{"date wrapped in markup", `<span class="d">2023年02月15日</span>`, strPtr("2023-02-15")},
		{"current phrase", "无需排期", strPtr("C")},
		{"unavailable phrase", "暂无排期", strPtr("U")},
		{"unavailable alternate phrase", "<b>不可用</b>", strPtr("U")},
		{"current beats date", "2022年11月15日 无需排期", strPtr("C")},
		{"unavailable beats date", "2021年01月01日 暂无排期", strPtr("U")},
		{"unavailable beats current", "暂无排期 无需排期", strPtr("U")},
		{"bulletin notation", "15NOV22", strPtr("2022-11-15")},
		{"bulletin notation second wins", "01JAN21 <br> 08FEB23", strPtr("2023-02-08")},
		{"bare C", " <td>C</td> ", strPtr("C")},
		{"bare U", "u", strPtr("U")},
		{"invalid month falls through", "2022年13月01日", nil},
		{"invalid current date does not fall back to previous", "2021年05月01日 2022年13月01日", nil},
		{"nothing recognizable", "Notes", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDateToken(tt.cell)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}
