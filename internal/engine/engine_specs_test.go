package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/checkpoint"
	"github.com/san-kum/aimd/internal/constraint"
	"github.com/san-kum/aimd/internal/engine"
	"github.com/san-kum/aimd/internal/report"
	"github.com/san-kum/aimd/internal/vector"
)

var _ = Describe("Engine", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("frozen atoms", func() {
		var (
			atoms []atom.Atom
			cp    *memCheckpoints
		)

		BeforeEach(func() {
			atoms = chain(5)
			frozen, err := constraint.Apply(atoms, "2-3")
			Expect(err).NotTo(HaveOccurred())
			Expect(frozen).To(Equal([]int{2, 3}))

			cp = &memCheckpoints{}
			// displace the springs so every atom feels a force
			well := newHarmonicWell(chain(5), 5)
			for i := range well.origin {
				well.origin[i] = well.origin[i].Add(vector.NewPosition(0.05, -0.03, 0.02))
			}

			eng, err := engine.New(atoms, engine.Config{TimeStep: 0.5, NumSteps: 6}, well, cp, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Run(ctx)).To(Succeed())
		})

		It("keeps frozen positions and velocities invariant", func() {
			for _, s := range cp.states {
				for _, idx := range []int{1, 2} {
					Expect(s.Atoms[idx].Mobile).To(BeFalse())
					Expect(s.Atoms[idx].Position).To(Equal(atoms[idx].Position))
					Expect(s.Atoms[idx].Velocity).To(Equal(vector.Velocity{}))
				}
			}
		})

		It("still carries the evaluated force on frozen atoms", func() {
			last := cp.last()
			for _, idx := range []int{1, 2} {
				Expect(last.Atoms[idx].Force.Norm()).To(BeNumerically(">", 0))
				Expect(last.Atoms[idx].Force).To(Equal(last.Atoms[idx].NextForce))
			}
		})

		It("moves the mobile atoms", func() {
			last := cp.last()
			for _, idx := range []int{0, 3, 4} {
				Expect(last.Atoms[idx].Position).NotTo(Equal(atoms[idx].Position))
			}
		})
	})

	Describe("a harmonic well", func() {
		It("conserves total energy with velocity Verlet", func() {
			atoms := []atom.Atom{{
				Symbol:   "H",
				Mass:     1,
				Mobile:   true,
				Position: vector.NewPosition(0.1, 0, 0),
			}}
			well := newHarmonicWell(atoms, 1)
			well.origin[0] = vector.Position{}

			cp := &memCheckpoints{}
			eng, err := engine.New(atoms, engine.Config{TimeStep: 0.5, NumSteps: 400}, well, cp, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Run(ctx)).To(Succeed())

			initial := cp.states[0].TotalEnergy
			Expect(initial).To(BeNumerically("~", 0.005, 1e-12))
			for _, s := range cp.states {
				Expect(s.TotalEnergy).To(BeNumerically("~", initial, 5e-5))
			}
			Expect(cp.states[0].KineticEnergy).To(BeZero())
		})
	})

	Describe("restart from a checkpoint log", func() {
		var (
			path string
			cfg  engine.Config
		)

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "save.json")
			cfg = engine.Config{TimeStep: 0.25, NumSteps: 6}
		})

		run := func(log *checkpoint.Log[engine.State], steps int) {
			eng, err := engine.New(water(), cfg, newHarmonicWell(water(), 3), log, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Bootstrap(ctx)).To(Succeed())
			for i := 0; i < steps; i++ {
				Expect(eng.Step(ctx)).To(Succeed())
			}
		}

		It("resumes after the last record and matches an uninterrupted run", func() {
			log := checkpoint.NewLog[engine.State](path)
			Expect(log.Reset()).To(Succeed())
			run(log, 2)

			last, err := log.Last()
			Expect(err).NotTo(HaveOccurred())
			Expect(last.StepNum).To(Equal(2))

			resumed, err := engine.Resume(last, newHarmonicWell(water(), 3), log, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.State().StepNum).To(Equal(3))
			Expect(resumed.Run(ctx)).To(Succeed())

			all, err := log.All()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(7))
			for i, s := range all {
				Expect(s.StepNum).To(Equal(i))
			}

			reference := &memCheckpoints{}
			eng, err := engine.New(water(), cfg, newHarmonicWell(water(), 3), reference, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Run(ctx)).To(Succeed())

			want, got := reference.last(), all[len(all)-1]
			Expect(got.TotalEnergy).To(BeNumerically("~", want.TotalEnergy, 1e-12))
			for i := range want.Atoms {
				Expect(got.Atoms[i].Position.Sub(want.Atoms[i].Position).Norm()).To(BeNumerically("<", 1e-12))
				Expect(got.Atoms[i].Velocity.Sub(want.Atoms[i].Velocity).Norm()).To(BeNumerically("<", 1e-12))
			}
		})

		It("ignores a record torn by a crash", func() {
			log := checkpoint.NewLog[engine.State](path)
			Expect(log.Reset()).To(Succeed())
			run(log, 1)

			tearLog(path)

			last, err := log.Last()
			Expect(err).NotTo(HaveOccurred())
			Expect(last.StepNum).To(Equal(1))

			changed, err := log.Repair()
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			resumed, err := engine.Resume(last, newHarmonicWell(water(), 3), log, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.Run(ctx)).To(Succeed())

			all, err := log.All()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(7))
		})
	})

	Describe("reports of an uncommitted step", func() {
		It("are rewound before resuming so no step is reported twice", func() {
			reports := report.NewFiles(GinkgoT().TempDir())
			Expect(reports.Init()).To(Succeed())

			cfg := engine.Config{TimeStep: 0.25, NumSteps: 6}
			cp := &memCheckpoints{failOn: 3}
			eng, err := engine.New(water(), cfg, newHarmonicWell(water(), 3), cp, reports, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Run(ctx)).To(MatchError(ContainSubstring("disk full")))

			energyRows := func() []string {
				data, err := os.ReadFile(filepath.Join(reports.Dir, report.EnergyFile))
				Expect(err).NotTo(HaveOccurred())
				lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
				return lines[1:]
			}
			Expect(energyRows()).To(HaveLen(3))

			last := cp.last()
			Expect(last.StepNum).To(Equal(1))
			changed, err := reports.Rewind(last.StepNum+1, len(last.Atoms))
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(energyRows()).To(HaveLen(2))

			resumed, err := engine.Resume(last, newHarmonicWell(water(), 3), &memCheckpoints{states: cp.states}, reports, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.Run(ctx)).To(Succeed())

			rows := energyRows()
			Expect(rows).To(HaveLen(7))
			seen := map[string]bool{}
			for _, row := range rows {
				t := strings.Fields(row)[0]
				Expect(seen).NotTo(HaveKey(t))
				seen[t] = true
			}
		})
	})

	Describe("metrics", func() {
		It("observes every checkpointed state", func() {
			m := &countingMetric{}
			eng, err := engine.New(water(), engine.Config{TimeStep: 1, NumSteps: 4}, &constantEvaluator{}, &memCheckpoints{}, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			eng.AddMetric(m)
			Expect(eng.Run(ctx)).To(Succeed())
			Expect(eng.Metrics()).To(HaveKeyWithValue("count", 5.0))
		})
	})
})

type countingMetric struct{ n int }

func (c *countingMetric) Name() string         { return "count" }
func (c *countingMetric) Observe(engine.State) { c.n++ }
func (c *countingMetric) Value() float64       { return float64(c.n) }
func (c *countingMetric) Reset()               { c.n = 0 }
