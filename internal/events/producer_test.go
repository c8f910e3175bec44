package events

import (
	"bytes"
	"context"
	"sync"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", Ordered, func() {
	Context("write", func() {
		It("writes succsessfully", func() {
			w := newTestWriter()
			kp := NewEventProducer(w, WithOutputTopic("pcap"))

			err := kp.Write(context.TODO(), JobSubmittedMessageKind, bytes.NewReader([]byte("msg1")))
			Expect(err).To(BeNil())
			err = kp.Write(context.TODO(), JobKilledMessageKind, bytes.NewReader([]byte("msg2")))
			Expect(err).To(BeNil())

			Eventually(w.Count).Should(Equal(2))
			messages := w.Events()
			Expect(messages[0].Type()).To(Equal(JobSubmittedMessageKind))
			Expect(messages[0].Source()).To(Equal(defaultSource))
			Expect(messages[0].Data()).To(Equal([]byte("msg1")))
			Expect(messages[1].Type()).To(Equal(JobKilledMessageKind))
			Expect(w.topics).To(ConsistOf("pcap", "pcap"))

			Expect(kp.Close()).To(Succeed())
			Expect(w.closed).To(BeTrue())
		})

		It("stamps the configured source", func() {
			w := newTestWriter()
			kp := NewEventProducer(w, WithSource("pcap.query.lab"), WithSource(""))

			Expect(kp.Write(context.TODO(), JobKilledMessageKind, bytes.NewReader([]byte("msg")))).To(Succeed())
			Eventually(w.Count).Should(Equal(1))
			Expect(w.Events()[0].Source()).To(Equal("pcap.query.lab"))
			Expect(kp.Close()).To(Succeed())
		})

		It("writes pending events before closing", func() {
			w := newTestWriter()
			kp := NewEventProducer(w)

			for i := 0; i < 10; i++ {
				Expect(kp.Write(context.TODO(), JobSubmittedMessageKind, bytes.NewReader([]byte("msg")))).To(Succeed())
			}
			Expect(kp.Close()).To(Succeed())
			Expect(w.Count()).To(Equal(10))
		})
	})

	Context("kafka writer", func() {
		It("sends the event to the topic", func() {
			sp := mocks.NewSyncProducer(GinkgoT(), nil)
			sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
				defer GinkgoRecover()
				Expect(msg.Topic).To(Equal("pcap"))
				Expect(msg.Headers).To(HaveLen(1))
				return nil
			})

			e := cloudevents.NewEvent()
			e.SetID("id")
			e.SetSource(defaultSource)
			e.SetType(JobSubmittedMessageKind)

			kw := NewKafkaWriterWithProducer(sp)
			Expect(kw.Write(context.TODO(), "pcap", e)).To(Succeed())
			Expect(kw.Close(context.TODO())).To(Succeed())
		})
	})
})

type testwriter struct {
	lock     sync.Mutex
	messages []cloudevents.Event
	topics   []string
	closed   bool
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.messages = append(t.messages, e)
	t.topics = append(t.topics, topic)
	return nil
}

func (t *testwriter) Count() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.messages)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]cloudevents.Event(nil), t.messages...)
}

func (t *testwriter) Close(_ context.Context) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = true
	return nil
}
