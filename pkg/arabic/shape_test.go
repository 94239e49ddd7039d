package arabic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReshape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"isolated letter", "ب", "ﺏ"},
		{"initial medial final", "بيت", "ﺑﻴﺖ"},
		{"right joining letter breaks the word", "دب", "ﺩﺏ"},
		{"lam alef ligature", "لا", "ﻻ"},
		{"lam alef after joining letter", "بلا", "ﺑﻼ"},
		{"harakat removed", "بَ", "ﺏ"},
		{"latin untouched", "SAR 10.00", "SAR 10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reshape(tt.input))
		})
	}
}

func TestShape_ArabicWordIsReversed(t *testing.T) {
	assert.Equal(t, "ﺖﻴﺑ", Shape("بيت"))
	assert.Equal(t, "ﺝﺭﻻ", Shape("لارج"))
}

func TestShape_LatinParagraphUnchanged(t *testing.T) {
	for _, s := range []string{"abc 123", "Elanam-Baish", "150.00 SAR", ""} {
		assert.Equal(t, s, Shape(s))
	}
}

func TestShape_NumbersInsideArabicKeepOrder(t *testing.T) {
	out := Shape("المبلغ 150.00 SAR")

	assert.True(t, strings.HasPrefix(out, "SAR 150.00 "), out)
	assert.Contains(t, out, "150.00")
}

func TestShape_KeepLTRRun(t *testing.T) {
	out := Shape("الفترة من " + KeepLTR("2024-01-01") + " إلى " + KeepLTR("2024-12-31"))

	assert.True(t, strings.HasPrefix(out, "2024-12-31 "), out)
	assert.Contains(t, out, "2024-01-01")
	assert.NotContains(t, out, string(lrm))
}

func TestShape_SignedAmount(t *testing.T) {
	out := Shape("إجمالي الأرباح: " + KeepLTR("-150.00 SAR"))

	assert.True(t, strings.HasPrefix(out, "-150.00 SAR :"), out)
}

func TestShape_MirrorsBracketsInRTL(t *testing.T) {
	out := Shape("(بيت)")

	assert.Equal(t, "(ﺖﻴﺑ)", out)
}

func TestShape_Deterministic(t *testing.T) {
	input := "تقرير العيادة البيطرية الشامل - Elanam-Zapia 2024"
	first := Shape(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Shape(input))
	}
}

func TestShape_MultipleLines(t *testing.T) {
	out := Shape("بيت\nabc")

	assert.Equal(t, "ﺖﻴﺑ\nabc", out)
}

func TestContainsRTL(t *testing.T) {
	assert.True(t, ContainsRTL("خدمات لارج"))
	assert.True(t, ContainsRTL("Product بيت"))
	assert.False(t, ContainsRTL("Cat food 2kg"))
	assert.False(t, ContainsRTL(""))
}
