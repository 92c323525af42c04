// Package calibration reduces prepared isotope datasets to standardized
// delta values.
//
// The reduction is a fixed sequence and each stage is its own type, so the
// only way to reach a later stage is through the earlier ones:
//
//	sums, err := calibration.Sum(mask, o16, o17, o18)   // deadtime-corrected inputs only
//	bulk, err := sums.Ratios()                          // R = sum(minor)/sum(reference)
//	qsa, err := bulk.CorrectQSA(beam, cal.QSABeta)      // Hillion et al. (2008)
//	meas, err := qsa.WithPixelSpread(mask, r17, r18)    // standard error of pixel ratios
//	deltas, err := meas.Deltas(cal)                     // permil vs. the standard ratio
//	final, err := deltas.Standardize(cal)               // IMF correction
//
// Every stage is a pure function of its inputs. A zero reference or minor
// sum stops the sequence with ErrDivisionHazard instead of producing NaN.
package calibration
