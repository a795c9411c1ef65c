package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

type requirementXML struct {
	Type           string  `xml:"type,attr"`
	Class          string  `xml:"class,attr"`
	Line           int     `xml:"line,attr,omitempty"`
	Method         string  `xml:"method,attr,omitempty"`
	DuaID          *int    `xml:"id,attr,omitempty"`
	Def            int     `xml:"def,attr,omitempty"`
	Use            int     `xml:"use,attr,omitempty"`
	Target         *int    `xml:"target,attr,omitempty"`
	Var            string  `xml:"var,attr,omitempty"`
	Cef            int     `xml:"cef,attr"`
	Cep            int     `xml:"cep,attr"`
	Suspiciousness float64 `xml:"suspiciousness,attr"`
}

func requirementXMLOf(e Entry) requirementXML {
	r := requirementXML{
		Type:           e.Kind,
		Class:          e.Class,
		Line:           e.Line,
		Method:         e.Method,
		Def:            e.Def,
		Use:            e.Use,
		Var:            e.Var,
		Cef:            e.CoveredByFailed,
		Cep:            e.CoveredByPassed,
		Suspiciousness: e.Score,
	}
	if e.Method != "" {
		id, target := e.DuaID, e.Target
		r.DuaID = &id
		r.Target = &target
	}
	return r
}

type flatXML struct {
	XMLName      xml.Name         `xml:"FlatFaultClassification"`
	Project      string           `xml:"project,attr"`
	Heuristic    string           `xml:"heuristic,attr"`
	TotalTests   int              `xml:"totalTests,attr"`
	FailedTests  int              `xml:"failedTests,attr"`
	TimeSpent    int64            `xml:"timeSpent,attr"`
	Requirements []requirementXML `xml:"requirement"`
}

// WriteFlatXML writes one requirement element per entry, in rank order.
func WriteFlatXML(w io.Writer, r *Report) error {
	doc := flatXML{
		Project:      r.Project,
		Heuristic:    r.Heuristic,
		TotalTests:   r.TotalTests,
		FailedTests:  r.FailedTests,
		TimeSpent:    r.TimeSpentMs,
		Requirements: make([]requirementXML, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		doc.Requirements = append(doc.Requirements, requirementXMLOf(e))
	}
	return encodeXML(w, doc)
}

type hierarchicalXML struct {
	XMLName     xml.Name     `xml:"FaultClassification"`
	Project     string       `xml:"project,attr"`
	Heuristic   string       `xml:"heuristic,attr"`
	TotalTests  int          `xml:"totalTests,attr"`
	FailedTests int          `xml:"failedTests,attr"`
	TimeSpent   int64        `xml:"timeSpent,attr"`
	Packages    []packageXML `xml:"package"`
}

type packageXML struct {
	Name           string     `xml:"name,attr"`
	Suspiciousness float64    `xml:"suspiciousness,attr"`
	Classes        []classXML `xml:"class"`
}

type classXML struct {
	Name           string           `xml:"name,attr"`
	Suspiciousness float64          `xml:"suspiciousness,attr"`
	Methods        []methodXML      `xml:"method"`
	Requirements   []requirementXML `xml:"requirement"`
}

type methodXML struct {
	Name           string           `xml:"name,attr"`
	Suspiciousness float64          `xml:"suspiciousness,attr"`
	Requirements   []requirementXML `xml:"requirement"`
}

// WriteHierarchicalXML groups entries by package, class and (for def-use
// requirements) method. A group's score is the maximum of its members.
// Groups are ordered by score and then name; members keep rank order.
func WriteHierarchicalXML(w io.Writer, r *Report) error {
	tree := Group(r.Entries)
	doc := hierarchicalXML{
		Project:     r.Project,
		Heuristic:   r.Heuristic,
		TotalTests:  r.TotalTests,
		FailedTests: r.FailedTests,
		TimeSpent:   r.TimeSpentMs,
		Packages:    make([]packageXML, 0, len(tree)),
	}
	for _, p := range tree {
		px := packageXML{Name: p.Name, Suspiciousness: p.Score}
		for _, c := range p.Classes {
			cx := classXML{Name: c.Name, Suspiciousness: c.Score}
			for _, m := range c.Methods {
				mx := methodXML{Name: m.Name, Suspiciousness: m.Score}
				for _, e := range m.Entries {
					mx.Requirements = append(mx.Requirements, requirementXMLOf(e))
				}
				cx.Methods = append(cx.Methods, mx)
			}
			for _, e := range c.Entries {
				cx.Requirements = append(cx.Requirements, requirementXMLOf(e))
			}
			px.Classes = append(px.Classes, cx)
		}
		doc.Packages = append(doc.Packages, px)
	}
	return encodeXML(w, doc)
}

func encodeXML(w io.Writer, doc any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// PackageGroup is a package of the hierarchical layout.
type PackageGroup struct {
	Name    string
	Score   float64
	Classes []*ClassGroup
}

// ClassGroup is a class (source file) of the hierarchical layout. Line
// entries sit directly under the class; def-use entries under their method.
type ClassGroup struct {
	Name    string
	Score   float64
	Methods []*MethodGroup
	Entries []Entry
}

// MethodGroup holds the def-use entries of one method.
type MethodGroup struct {
	Name    string
	Score   float64
	Entries []Entry
}

// Group builds the package, class and method hierarchy of ranked entries.
func Group(entries []Entry) []*PackageGroup {
	var packages []*PackageGroup
	pkgIndex := make(map[string]*PackageGroup)
	classIndex := make(map[string]*ClassGroup)
	methodIndex := make(map[[2]string]*MethodGroup)

	for _, e := range entries {
		p, ok := pkgIndex[e.Package]
		if !ok {
			p = &PackageGroup{Name: e.Package, Score: e.Score}
			pkgIndex[e.Package] = p
			packages = append(packages, p)
		}
		p.Score = max(p.Score, e.Score)

		c, ok := classIndex[e.Class]
		if !ok {
			c = &ClassGroup{Name: e.Class, Score: e.Score}
			classIndex[e.Class] = c
			p.Classes = append(p.Classes, c)
		}
		c.Score = max(c.Score, e.Score)

		if e.Method == "" {
			c.Entries = append(c.Entries, e)
			continue
		}
		mk := [2]string{e.Class, e.Method}
		m, ok := methodIndex[mk]
		if !ok {
			m = &MethodGroup{Name: e.Method, Score: e.Score}
			methodIndex[mk] = m
			c.Methods = append(c.Methods, m)
		}
		m.Score = max(m.Score, e.Score)
		m.Entries = append(m.Entries, e)
	}

	sort.SliceStable(packages, func(i, j int) bool {
		return groupLess(packages[i].Score, packages[i].Name, packages[j].Score, packages[j].Name)
	})
	for _, p := range packages {
		sort.SliceStable(p.Classes, func(i, j int) bool {
			return groupLess(p.Classes[i].Score, p.Classes[i].Name, p.Classes[j].Score, p.Classes[j].Name)
		})
		for _, c := range p.Classes {
			sort.SliceStable(c.Methods, func(i, j int) bool {
				return groupLess(c.Methods[i].Score, c.Methods[i].Name, c.Methods[j].Score, c.Methods[j].Name)
			})
		}
	}
	return packages
}

func groupLess(scoreA float64, nameA string, scoreB float64, nameB string) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return nameA < nameB
}
