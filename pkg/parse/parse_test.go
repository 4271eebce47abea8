package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDollar(t *testing.T) {
	assert.Equal(t, "1234.56", Dollar("$1,234.56").String())
	assert.Equal(t, "0", Dollar("-").String())
	assert.Equal(t, "0", Dollar("").String())
	assert.Equal(t, "0", Dollar("garbage").String())
	assert.Equal(t, "99.9", Dollar("99.90").String())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 12.5, Percent("12.5%"))
	assert.Equal(t, 0.0, Percent("-"))
	assert.Equal(t, 0.0, Percent("n/a"))
	assert.Equal(t, 1250.0, Percent("1,250%"))
}

func TestReplySeconds(t *testing.T) {
	v := ReplySeconds("1h 2m 3s")
	assert.NotNil(t, v)
	assert.Equal(t, 3723.0, *v)

	v = ReplySeconds("45s")
	assert.NotNil(t, v)
	assert.Equal(t, 45.0, *v)

	assert.Nil(t, ReplySeconds(""))
	assert.Nil(t, ReplySeconds("-"))
	assert.Nil(t, ReplySeconds("soon"))
}

func TestClockedMinutes(t *testing.T) {
	assert.Equal(t, 423, ClockedMinutes("7h 3min"))
	assert.Equal(t, 0, ClockedMinutes("0min"))
	assert.Equal(t, 0, ClockedMinutes("-"))
	assert.Equal(t, 120, ClockedMinutes("2h"))
}

func TestHour(t *testing.T) {
	h := Hour("14:03")
	assert.NotNil(t, h)
	assert.Equal(t, 14, *h)

	h = Hour("09:30:15")
	assert.NotNil(t, h)
	assert.Equal(t, 9, *h)

	assert.Nil(t, Hour("25:00"))
	assert.Nil(t, Hour("noon"))
	assert.Nil(t, Hour(""))
}

func TestFormatSeconds(t *testing.T) {
	s := 3723.0
	assert.Equal(t, "1h 2m 3s", FormatSeconds(&s))
	s = 125.0
	assert.Equal(t, "2m 5s", FormatSeconds(&s))
	assert.Equal(t, "N/A", FormatSeconds(nil))
	zero := 0.0
	assert.Equal(t, "N/A", FormatSeconds(&zero))
}

func TestYesNo(t *testing.T) {
	assert.True(t, YesNo("Yes"))
	assert.True(t, YesNo("yes "))
	assert.False(t, YesNo("No"))
	assert.False(t, YesNo(""))
}
