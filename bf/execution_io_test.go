package bf_test

import (
	"errors"
	"io"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mgomes/bfi/bf"
)

var _ = Describe("Execution I/O", func() {
	var (
		mockCtrl   *gomock.Controller
		mockSink   *MockByteSink
		mockSource *MockByteSource
		engine     *bf.Engine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockSink = NewMockByteSink(mockCtrl)
		mockSource = NewMockByteSource(mockCtrl)
		engine = bf.MustNewEngine(bf.Config{})
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	run := func(source string) error {
		program, err := engine.Compile(source)
		Expect(err).NotTo(HaveOccurred())
		exec := engine.NewExecution(mockSource, mockSink)
		exec.Load(program)
		return exec.Run()
	}

	It("should flush after every output byte", func() {
		gomock.InOrder(
			mockSink.EXPECT().WriteByte(byte(1)).Return(nil),
			mockSink.EXPECT().Flush().Return(nil),
			mockSink.EXPECT().WriteByte(byte(2)).Return(nil),
			mockSink.EXPECT().Flush().Return(nil),
		)

		Expect(run("+.+.")).To(Succeed())
	})

	It("should read one byte per input instruction", func() {
		gomock.InOrder(
			mockSource.EXPECT().ReadByte().Return(byte('h'), nil),
			mockSink.EXPECT().WriteByte(byte('h')).Return(nil),
			mockSink.EXPECT().Flush().Return(nil),
			mockSource.EXPECT().ReadByte().Return(byte('i'), nil),
			mockSink.EXPECT().WriteByte(byte('i')).Return(nil),
			mockSink.EXPECT().Flush().Return(nil),
		)

		Expect(run(",.,.")).To(Succeed())
	})

	It("should leave the cell unchanged at end of input by default", func() {
		mockSource.EXPECT().ReadByte().Return(byte(0), io.EOF)
		gomock.InOrder(
			mockSink.EXPECT().WriteByte(byte(5)).Return(nil),
			mockSink.EXPECT().Flush().Return(nil),
		)

		Expect(run("+++++,.")).To(Succeed())
	})

	It("should zero the cell at end of input under the zero policy", func() {
		engine = bf.MustNewEngine(bf.Config{EOFPolicy: bf.EOFZero})
		mockSource.EXPECT().ReadByte().Return(byte(0), io.EOF)
		gomock.InOrder(
			mockSink.EXPECT().WriteByte(byte(0)).Return(nil),
			mockSink.EXPECT().Flush().Return(nil),
		)

		Expect(run("+++++,.")).To(Succeed())
	})

	It("should propagate sink write failures", func() {
		sinkErr := errors.New("broken pipe")
		mockSink.EXPECT().WriteByte(gomock.Any()).Return(sinkErr)

		err := run("+.+.")
		Expect(err).To(MatchError(sinkErr))

		var runtimeErr *bf.RuntimeError
		Expect(errors.As(err, &runtimeErr)).To(BeTrue())
		Expect(runtimeErr.Op).To(Equal(bf.OpOutput))
		Expect(runtimeErr.IP).To(Equal(1))
	})

	It("should propagate flush failures", func() {
		flushErr := errors.New("device full")
		mockSink.EXPECT().WriteByte(byte(1)).Return(nil)
		mockSink.EXPECT().Flush().Return(flushErr)

		Expect(run("+.")).To(MatchError(flushErr))
	})

	It("should propagate source read failures", func() {
		readErr := errors.New("connection reset")
		mockSource.EXPECT().ReadByte().Return(byte(0), readErr)

		err := run(",.")
		Expect(err).To(MatchError(readErr))
		Expect(err.Error()).To(ContainSubstring("read input"))
	})

	It("should not touch I/O for a program without I/O instructions", func() {
		Expect(run("++[>+<-]")).To(Succeed())
	})
})
