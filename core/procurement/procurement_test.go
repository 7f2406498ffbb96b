package procurement

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
)

func table() *types.BOQTable {
	return &types.BOQTable{
		Location: types.LocationLekki,
		Lines: []types.PricedLine{
			{Item: "Cement", Quantity: 100, Total: decimal.NewFromInt(1090000)},
			{Item: "Cement (M25)", Quantity: 12.5, Total: decimal.NewFromInt(136250)},
			{Item: "Paint", Quantity: 4, Total: decimal.Zero, Unresolved: true},
		},
	}
}

func TestOrderMessage(t *testing.T) {
	msg := OrderMessage(types.LocationLekki, table(), "Bodija Builders Mart")

	for _, want := range []string{
		"Hello Bodija Builders Mart,",
		"project in *Lekki, Lagos*",
		"- Cement: 100 units",
		"- Cement (M25): 12.5 units",
		"*Target Budget:* ₦1,226,250",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Paint") {
		t.Error("zero-total lines must not be ordered")
	}
}

func TestOrderMessageEmpty(t *testing.T) {
	if got := OrderMessage(types.LocationIbadan, nil, "X"); got != NoItems {
		t.Errorf("got %q", got)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link, ok := WhatsAppLink("+234 8031234567", "Hello there")
	if !ok {
		t.Fatal("expected a link")
	}
	if link != "https://wa.me/2348031234567?text=Hello%20there" {
		t.Errorf("unexpected link %q", link)
	}
	link, _ = WhatsAppLink("+2348031234567", "a&b")
	if link != "https://wa.me/2348031234567?text=a%26b" {
		t.Errorf("unexpected link %q", link)
	}
	if _, ok := WhatsAppLink("  ", "hi"); ok {
		t.Error("blank phone must not produce a link")
	}
}

func TestEmailLink(t *testing.T) {
	link, ok := EmailLink("sales@example.com", types.LocationAbuja, "Hi")
	if !ok {
		t.Fatal("expected a link")
	}
	want := "mailto:sales@example.com?subject=Order%20Request%20-%20Abuja%2C%20FCT%20Project&body=Hi"
	if link != want {
		t.Errorf("got %q, want %q", link, want)
	}
}
