package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/porttwin/core/metrics"
)

type dummyToken struct {
	err     error
	timeout bool
}

func (t *dummyToken) Wait() bool                     { return true }
func (t *dummyToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *dummyToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *dummyToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type mockClient struct {
	opts         *paho.ClientOptions
	connectErr   error
	publishErr   error
	timeout      bool
	published    []published
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return !m.disconnected }
func (m *mockClient) Connect() paho.Token {
	return &dummyToken{err: m.connectErr}
}
func (m *mockClient) Disconnect(uint) { m.disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.published = append(m.published, published{topic, qos, retained, payload.([]byte)})
	return &dummyToken{err: m.publishErr, timeout: m.timeout}
}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestStatePublisherRecordBoatState(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewStatePublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "marina/", QoS: 1, Retain: true})
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", mc.opts.Servers[0].String())

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, pub.RecordBoatState(coremetrics.BoatState{
		RunID: "r1", Port: "Marina Verde", Boat: "EcoWave", SoCPercent: 88.75,
		AvailableEnergyWh: 71000, Context: "charge", Time: now,
	}))
	require.Len(t, mc.published, 1)
	msg := mc.published[0]
	assert.Equal(t, "marina/boat/EcoWave/state", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retain)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "EcoWave", got["name"])
	assert.Equal(t, 88.75, got["soc_percent"])
	assert.Equal(t, 71000.0, got["available_energy_wh"])
	assert.Equal(t, "r1", got["run_id"])

	require.NoError(t, pub.Close())
	assert.True(t, mc.disconnected)
}

func TestStatePublisherRecordTrip(t *testing.T) {
	mc := &mockClient{}
	pub := newStatePublisher(mc, Config{TopicPrefix: "pt", PublishTimeout: time.Second})
	require.NoError(t, pub.RecordTrip(coremetrics.TripRecord{Trip: 2, Boat: "SeaVolt", EnergyWh: 4500, Duration: time.Hour}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "pt/boat/SeaVolt/trip", mc.published[0].topic)
	var got tripPayload
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &got))
	assert.Equal(t, 3600.0, got.DurationS)
	assert.Equal(t, 2, got.Trip)
}

func TestStatePublisherTopicEscapesBoatName(t *testing.T) {
	pub := newStatePublisher(&mockClient{}, Config{TopicPrefix: "pt", PublishTimeout: time.Second})
	assert.Equal(t, "pt/boat/a_b_c_/state", pub.Topic("a/b+c#", "state"))
	assert.Equal(t, "pt/boat/Sea Volt/trip", pub.Topic("Sea Volt", "trip"))
}

func TestStatePublisherErrors(t *testing.T) {
	boom := errors.New("boom")
	mc := &mockClient{publishErr: boom}
	pub := newStatePublisher(mc, Config{TopicPrefix: "pt", PublishTimeout: time.Second})
	if err := pub.RecordTrip(coremetrics.TripRecord{Boat: "b"}); !errors.Is(err, boom) {
		t.Fatalf("expected boom got %v", err)
	}
	mc = &mockClient{timeout: true}
	pub = newStatePublisher(mc, Config{TopicPrefix: "pt", PublishTimeout: time.Millisecond})
	if err := pub.RecordTrip(coremetrics.TripRecord{Boat: "b"}); !errors.Is(err, ErrPublishTimeout) {
		t.Fatalf("expected timeout got %v", err)
	}
}

func TestNewStatePublisherConnectError(t *testing.T) {
	withMock(t, &mockClient{connectErr: errors.New("refused")})
	if _, err := NewStatePublisher(Config{Broker: "tcp://localhost:1883"}); err == nil {
		t.Fatal("expected connect error")
	}
	if _, err := NewStatePublisher(Config{}); err == nil {
		t.Fatal("expected missing broker error")
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "porttwin", c.TopicPrefix)
	assert.Equal(t, 5*time.Second, c.PublishTimeout)
	assert.NotEmpty(t, c.ClientID)
	assert.Error(t, Config{Broker: "x", QoS: 3}.Validate())
	assert.EqualError(t, Config{}.Validate(), "mqtt broker is required")
	_, err := Config{UseTLS: true}.LoadTLSConfig()
	assert.EqualError(t, err, "tls config requires client_cert, client_key and ca_bundle")
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 || tlsCfg.RootCAs == nil {
		t.Fatalf("tls config incomplete")
	}
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatal("expected error without files")
	}
}
