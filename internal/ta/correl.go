package ta

// CorrelLookback returns the number of undefined leading outputs for rolling
// Pearson correlation.
func CorrelLookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// CorrelState is the carried state for incremental rolling correlation: the
// five window sums the Pearson formula needs.
type CorrelState struct {
	Sum0   TAFloat
	Sum1   TAFloat
	Sum0Sq TAFloat
	Sum1Sq TAFloat
	Sum01  TAFloat
}

// Correl computes the rolling Pearson correlation coefficient between two
// aligned series over a window of period samples. Windows with zero variance
// in either series produce NaN.
func (k Kernel) Correl(input0, input1 []TAFloat, period int, output []TAFloat) error {
	lookback, err := CorrelLookback(period)
	if err != nil {
		return err
	}
	if err := checkData(len(input0), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(input0), input1, output); err != nil {
		return err
	}
	if err := k.checkNoNaN(input0, input1); err != nil {
		return err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return err
	}

	var st CorrelState
	for i := 0; i < period; i++ {
		st.admit(input0[i], input1[i], 0, 0)
	}
	output[lookback] = st.coefficient(p)
	for i := lookback + 1; i < len(input0); i++ {
		st.admit(input0[i], input1[i], input0[i-period], input1[i-period])
		output[i] = st.coefficient(p)
	}
	fillNaN(output, lookback)
	return nil
}

// CorrelInc advances the rolling correlation by one aligned sample pair.
// The samples leaving the window come from the caller's raw-sample rings.
func (k Kernel) CorrelInc(new0, new1, old0, old1 TAFloat, prev CorrelState, period int) (TAFloat, CorrelState, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, prev, err
	}
	if err := k.checkNoNaNValues(new0, new1, old0, old1, prev.Sum0, prev.Sum1, prev.Sum0Sq, prev.Sum1Sq, prev.Sum01); err != nil {
		return 0, prev, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, prev, err
	}

	st := prev
	st.admit(new0, new1, old0, old1)
	return st.coefficient(p), st, nil
}

func (s *CorrelState) admit(new0, new1, old0, old1 TAFloat) {
	s.Sum0 += new0 - old0
	s.Sum1 += new1 - old1
	s.Sum0Sq += new0*new0 - old0*old0
	s.Sum1Sq += new1*new1 - old1*old1
	s.Sum01 += new0*new1 - old0*old1
}

func (s *CorrelState) coefficient(p TAFloat) TAFloat {
	num := p*s.Sum01 - s.Sum0*s.Sum1
	den0 := p*s.Sum0Sq - s.Sum0*s.Sum0
	den1 := p*s.Sum1Sq - s.Sum1*s.Sum1
	den := taSqrt(den0 * den1)
	if den <= 0 {
		return NaN()
	}
	return num / den
}
