package cli

import (
	"fmt"
	"strconv"
	"strings"

	"agrichat/db"
	"agrichat/session"
	"agrichat/types"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// taWeightDefault is the customary weight of one "tạ" in the sweet potato
// trade of the Mekong Delta region.
const taWeightDefault = 60

var calcLabels = []string{
	"Số bao",
	"Ký mỗi bao (kg)",
	"Ký mỗi tạ (kg)",
	"Giá mỗi tạ (đ)",
	"Tiền cọc đã nhận (đ)",
	"Diện tích",
}

// CalcResult is the derived harvest estimate.
type CalcResult struct {
	TotalKg      float64
	TotalTa      float64
	Money        float64
	Net          float64
	YieldPerUnit float64
	YieldTa      float64
}

// Compute turns raw harvest inputs into the revenue estimate. A missing tạ
// weight falls back to the customary 60 kg; yields are zero without an area.
func Compute(in types.CalculatorInputs) CalcResult {
	taWeight := in.TaWeight
	if taWeight <= 0 {
		taWeight = taWeightDefault
	}

	totalKg := in.BagCount * in.BagWeight
	totalTa := totalKg / taWeight
	money := totalTa * in.PricePerTa
	net := money - in.Deposit
	if net < 0 {
		net = 0
	}

	var yieldPerUnit, yieldTa float64
	if in.AreaSize > 0 {
		yieldPerUnit = totalKg / in.AreaSize
		yieldTa = yieldPerUnit / taWeight
	}

	return CalcResult{
		TotalKg:      totalKg,
		TotalTa:      totalTa,
		Money:        money,
		Net:          net,
		YieldPerUnit: yieldPerUnit,
		YieldTa:      yieldTa,
	}
}

type calcState struct {
	fields   []textinput.Model
	focus    int
	areaUnit string
	result   *CalcResult
}

func newCalcState(store *db.DB) calcState {
	s := calcState{areaUnit: "công"}
	s.fields = make([]textinput.Model, len(calcLabels))
	for i := range s.fields {
		ti := textinput.New()
		ti.Width = 16
		ti.Placeholder = "0"
		s.fields[i] = ti
	}
	s.fields[0].Focus()
	if store != nil {
		s = s.restore(store)
	}
	return s
}

// restore refills the form with the last-used inputs.
func (s calcState) restore(store *db.DB) calcState {
	in, ok := store.LoadCalculator()
	if !ok {
		return s
	}
	set := func(i int, v float64) {
		if v != 0 {
			s.fields[i].SetValue(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	set(0, in.BagCount)
	set(1, in.BagWeight)
	set(2, in.TaWeight)
	set(3, in.PricePerTa)
	set(4, in.Deposit)
	set(5, in.AreaSize)
	if in.AreaUnit != "" {
		s.areaUnit = in.AreaUnit
	}
	return s
}

func (s calcState) reload(store *db.DB) calcState {
	fresh := newCalcState(store)
	return fresh
}

func (s calcState) inputs() types.CalculatorInputs {
	num := func(i int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s.fields[i].Value()), 64)
		if err != nil {
			return 0
		}
		return v
	}
	return types.CalculatorInputs{
		BagCount:   num(0),
		BagWeight:  num(1),
		TaWeight:   num(2),
		PricePerTa: num(3),
		Deposit:    num(4),
		AreaSize:   num(5),
		AreaUnit:   s.areaUnit,
	}
}

func (m model) updateCalculator(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.calc.fields[m.calc.focus], cmd = m.calc.fields[m.calc.focus].Update(msg)
		return m, cmd
	}

	switch km.Type {
	case tea.KeyEsc:
		m.app.Go(session.ViewHome)
		m.cursor = 0
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m.calcFocus(m.calc.focus + 1), nil
	case tea.KeyShiftTab, tea.KeyUp:
		return m.calcFocus(m.calc.focus - 1), nil
	case tea.KeyEnter:
		in := m.calc.inputs()
		res := Compute(in)
		m.calc.result = &res
		if err := m.store.SaveCalculator(in); err == nil {
			m.note = ""
		}
		return m, nil
	}

	if km.String() == "u" && m.calc.fields[m.calc.focus].Value() == "" && m.calc.focus == len(calcLabels)-1 {
		if m.calc.areaUnit == "công" {
			m.calc.areaUnit = "ha"
		} else {
			m.calc.areaUnit = "công"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.calc.fields[m.calc.focus], cmd = m.calc.fields[m.calc.focus].Update(msg)
	return m, cmd
}

func (m model) calcFocus(next int) model {
	if next < 0 {
		next = len(m.calc.fields) - 1
	}
	if next >= len(m.calc.fields) {
		next = 0
	}
	m.calc.fields[m.calc.focus].Blur()
	m.calc.focus = next
	m.calc.fields[next].Focus()
	return m
}

func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	return string(out) + "đ"
}

func (m model) viewCalculator() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Máy tính thu hoạch khoai lang") + "\n\n")

	for i, label := range calcLabels {
		display := label
		if i == len(calcLabels)-1 {
			display = fmt.Sprintf("%s (%s)", label, m.calc.areaUnit)
		}
		prefix := "  "
		if i == m.calc.focus {
			prefix = selectStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("  %s%-22s %s\n", prefix, display, m.calc.fields[i].View()))
	}

	if r := m.calc.result; r != nil {
		card := fmt.Sprintf(
			"Tổng: %.0f kg (%.1f tạ)\nThành tiền: %s\nThực nhận sau cọc: %s",
			r.TotalKg, r.TotalTa, formatMoney(r.Money), formatMoney(r.Net))
		if r.YieldPerUnit > 0 {
			card += fmt.Sprintf("\nNăng suất: %.0f kg/%s (%.1f tạ)", r.YieldPerUnit, m.calc.areaUnit, r.YieldTa)
		}
		b.WriteString("\n  " + cardStyle.Render(card) + "\n")
	}

	b.WriteString("\n  " + faintStyle.Render("TAB/↑↓ đổi ô · u đổi đơn vị diện tích · ENTER tính · ESC quay về") + "\n")
	return b.String()
}
