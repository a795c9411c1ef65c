package heuristic

import "math"

var builtins = []Heuristic{
	{Name: "Tarantula", Description: "(F/TF) / ((F/TF) + (P/TP))", Score: tarantula},
	{Name: "Ochiai", Description: "F / sqrt(TF * (F+P))", Score: ochiai},
	{Name: "Jaccard", Description: "F / (TF + P)", Score: jaccard},
	{Name: "Ochiai2", Description: "(F*NP) / sqrt((F+P)(NF+NP)(F+NP)(NF+P))", Score: ochiai2},
	{Name: "Zoltar", Description: "F / (TF + P + 10000*NF*P/F)", Score: zoltar},
	{Name: "Kulczynski2", Description: "(F/TF + F/(F+P)) / 2", Score: kulczynski2},
	{Name: "McCon", Description: "(F*F - NF*P) / (TF*(F+P))", Score: mccon},
	{Name: "Op", Description: "F - P/(TP+1)", Score: op},
	{Name: "Wong3", Description: "F - h(P)", Score: wong3},
	{Name: "DStar", Description: "F^2 / (P + NF)", Score: dstar},
	{Name: "SorensenDice", Description: "2F / (2F + P + NF)", Score: sorensenDice},
	{Name: "RussellRao", Description: "F / (TF + TP)", Score: russellRao},
	{Name: "SimpleMatching", Description: "(F + NP) / (TF + TP)", Score: simpleMatching},
	{Name: "Ample", Description: "|F/TF - P/TP|", Score: ample},
	{Name: "Barinel", Description: "1 - P/(P+F)", Score: barinel},
}

// div returns n/d, or 0 when d is 0.
func div(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

func tarantula(f, p, tf, tp int) float64 {
	failRatio := div(float64(f), float64(tf))
	passRatio := div(float64(p), float64(tp))
	return div(failRatio, failRatio+passRatio)
}

func ochiai(f, p, tf, _ int) float64 {
	return div(float64(f), math.Sqrt(float64(tf)*float64(f+p)))
}

func jaccard(f, p, tf, _ int) float64 {
	return div(float64(f), float64(tf+p))
}

func ochiai2(f, p, tf, tp int) float64 {
	nf, np := float64(tf-f), float64(tp-p)
	ff, pp := float64(f), float64(p)
	return div(ff*np, math.Sqrt((ff+pp)*(nf+np)*(ff+np)*(nf+pp)))
}

func zoltar(f, p, tf, _ int) float64 {
	if f == 0 {
		return 0
	}
	nf := float64(tf - f)
	return div(float64(f), float64(tf)+float64(p)+10000*nf*float64(p)/float64(f))
}

func kulczynski2(f, p, tf, _ int) float64 {
	return 0.5 * (div(float64(f), float64(tf)) + div(float64(f), float64(f+p)))
}

func mccon(f, p, tf, _ int) float64 {
	nf := float64(tf - f)
	return div(float64(f)*float64(f)-nf*float64(p), float64(tf)*float64(f+p))
}

func op(f, p, _, tp int) float64 {
	return float64(f) - float64(p)/float64(tp+1)
}

func wong3(f, p, _, _ int) float64 {
	pp := float64(p)
	var h float64
	switch {
	case p <= 2:
		h = pp
	case p <= 10:
		h = 2 + 0.1*(pp-2)
	default:
		h = 2.8 + 0.001*(pp-10)
	}
	return float64(f) - h
}

func dstar(f, p, tf, _ int) float64 {
	ff := float64(f)
	return div(ff*ff, float64(p+tf-f))
}

func sorensenDice(f, p, tf, _ int) float64 {
	return div(2*float64(f), 2*float64(f)+float64(p)+float64(tf-f))
}

func russellRao(f, _, tf, tp int) float64 {
	return div(float64(f), float64(tf+tp))
}

func simpleMatching(f, p, tf, tp int) float64 {
	return div(float64(f+tp-p), float64(tf+tp))
}

func ample(f, p, tf, tp int) float64 {
	return math.Abs(div(float64(f), float64(tf)) - div(float64(p), float64(tp)))
}

func barinel(f, p, _, _ int) float64 {
	if f+p == 0 {
		return 0
	}
	return 1 - float64(p)/float64(p+f)
}
