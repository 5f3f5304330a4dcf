package tracer_test

import (
	"time"

	"github.com/ctessum/sparse"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
	"github.com/san-kum/gridstate/pkg/tracer"
)

func mixingRatio(vals ...float64) *darray.DataArray {
	arr := sparse.ZerosDense(len(vals))
	copy(arr.Elements, vals)
	a, err := darray.New(arr, []string{"mid_levels"}, map[string]string{"units": "kg kg^-1"})
	Expect(err).NotTo(HaveOccurred())
	return a
}

var _ = Describe("Registry", func() {
	var reg *tracer.Registry

	BeforeEach(func() {
		reg = tracer.NewRegistry()
	})

	It("keeps registration order", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		Expect(reg.Register("ch4", "kg kg^-1")).To(Succeed())
		Expect(reg.Names()).To(Equal([]string{"co2", "ch4"}))
	})

	It("treats identical re-registration as a no-op", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		Expect(reg.Names()).To(Equal([]string{"co2"}))
	})

	It("rejects re-registration with different units", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		err := reg.Register("co2", "mol mol^-1")
		Expect(err).To(MatchError(tracer.ErrUnitsConflict))
		Expect(reg.Units()["co2"]).To(Equal("kg kg^-1"))
	})

	It("clears on reset", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		reg.Reset()
		Expect(reg.Names()).To(BeEmpty())
	})

	It("rejects tracers colliding with a live packer's own quantities", func() {
		owned := schema.Schema{
			"cloud_fraction": {Dims: []string{"mid_levels"}, Units: "1"},
		}
		p, err := tracer.NewPacker(reg, []string{"tracer", "mid_levels"}, nil, owned)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		err = reg.Register("cloud_fraction", "1")
		var propErr *schema.PropertiesError
		Expect(err).To(BeAssignableToTypeOf(propErr))
		Expect(reg.Names()).To(Equal([]string{"co2"}))
	})
})

var _ = Describe("Packer", func() {
	var (
		reg   *tracer.Registry
		state *darray.State
	)

	BeforeEach(func() {
		reg = tracer.NewRegistry()
		state = darray.NewState(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		state.Fields["co2"] = mixingRatio(1, 2, 3)
		state.Fields["ch4"] = mixingRatio(4, 5, 6)
	})

	It("requires exactly one tracer axis", func() {
		_, err := tracer.NewPacker(reg, []string{"mid_levels"}, nil)
		Expect(err).To(HaveOccurred())
		_, err = tracer.NewPacker(reg, []string{"tracer", "tracer"}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("packs registered tracers in order along the tracer axis", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		Expect(reg.Register("ch4", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		packed, err := p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		Expect(packed.Shape).To(Equal([]int{2, 3}))
		Expect(packed.Elements).To(Equal([]float64{1, 2, 3, 4, 5, 6}))
	})

	It("places prepended tracers first", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"},
			[]tracer.Tracer{{Name: "ch4", Units: "kg kg^-1"}})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		Expect(p.Names()).To(Equal([]string{"ch4", "co2"}))
		packed, err := p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		Expect(packed.Elements).To(Equal([]float64{4, 5, 6, 1, 2, 3}))
	})

	It("sees tracers registered after construction", func() {
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		packed, err := p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		Expect(packed.Shape).To(Equal([]int{0, 0}))

		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		packed, err = p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		Expect(packed.Shape).To(Equal([]int{1, 3}))
	})

	It("supports a trailing tracer axis", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		Expect(reg.Register("ch4", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"*", "tracer"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		packed, err := p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		Expect(packed.Shape).To(Equal([]int{3, 2}))
		Expect(packed.Get(0, 0)).To(Equal(1.0))
		Expect(packed.Get(0, 1)).To(Equal(4.0))
		Expect(packed.Get(2, 0)).To(Equal(3.0))
	})

	It("round-trips through unpack", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		Expect(reg.Register("ch4", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		packed, err := p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		unpacked, err := p.Unpack(packed, state, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(unpacked).To(HaveLen(2))
		Expect(unpacked["co2"].Dims).To(Equal([]string{"mid_levels"}))
		Expect(unpacked["co2"].Values.Elements).To(Equal([]float64{1, 2, 3}))
		Expect(unpacked["ch4"].Values.Elements).To(Equal([]float64{4, 5, 6}))
	})

	It("appends the multiply unit to unpacked tendencies", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		packed, err := p.Pack(state)
		Expect(err).NotTo(HaveOccurred())
		unpacked, err := p.Unpack(packed, state, "s^-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(unpacked["co2"].Attrs["units"]).To(Equal("kg kg^-1 s^-1"))
	})

	It("rejects a stacked array with the wrong tracer count", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		_, err = p.Unpack(sparse.ZerosDense(2, 3), state, "")
		Expect(err).To(HaveOccurred())
	})

	It("synthesizes tracer input properties", func() {
		Expect(reg.Register("co2", "kg kg^-1")).To(Succeed())
		p, err := tracer.NewPacker(reg, []string{"tracer", "*"}, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		props := p.InputProperties()
		Expect(props).To(HaveKey("co2"))
		Expect(props["co2"].Dims).To(Equal([]string{"*"}))
		Expect(props["co2"].Tracer).To(BeTrue())
	})
})

var _ = Describe("Default registry helpers", func() {
	AfterEach(func() {
		tracer.ResetTracers()
	})

	It("registers into the process-wide registry", func() {
		Expect(tracer.RegisterTracer("o3", "mol mol^-1")).To(Succeed())
		Expect(tracer.TracerNames()).To(ContainElement("o3"))
		Expect(tracer.TracerUnits()["o3"]).To(Equal("mol mol^-1"))
	})
})
