package pdml_test

import (
	api "github.com/kubev2v/pcap-query/api/v1alpha1"
)

const pdmlXml = `<?xml version="1.0" encoding="utf-8"?>
<?xml-stylesheet type="text/xsl" href="pdml2html.xsl"?>
<pdml version="0" creator="wireshark/2.6.1" time="Thu Jun 28 14:14:38 2018" capture_file="/tmp/pcap-data-201806272004-289365c53112438ca55ea047e13a12a5+0001.pcap">
<packet>
<proto name="geninfo" pos="0" showname="General information" size="722" hide="no">
<field name="num" pos="0" show="1" showname="Number" value="1" size="722"/>
</proto>
<proto name="ip" showname="Internet Protocol Version 4, Src: 192.168.66.1, Dst: 192.168.66.121" size="20" pos="14" hide="yes">
<field name="ip.addr" showname="Source or Destination Address: 192.168.66.121" hide="yes" size="4" pos="30" show="192.168.66.121" value="c0a84279"/>
<field name="ip.flags" showname="Flags: 0x4000, Don&#x27;t fragment" size="2" pos="20" show="0x00004000" value="4000">
<field name="ip.flags.mf" showname="..0. .... .... .... = More fragments: Not set" size="2" pos="20" show="0" value="0" unmaskedvalue="4000"/>
</field>
</proto>
</packet>
</pdml>
`

var expectedPdml = &api.Pdml{
	Version:     "0",
	Creator:     "wireshark/2.6.1",
	Time:        "Thu Jun 28 14:14:38 2018",
	CaptureFile: "/tmp/pcap-data-201806272004-289365c53112438ca55ea047e13a12a5+0001.pcap",
	Packets: []api.Packet{
		{
			Protos: []api.Proto{
				{
					Name:     "geninfo",
					Pos:      "0",
					Showname: "General information",
					Size:     "722",
					Hide:     "no",
					Fields: []api.Field{
						{Name: "num", Pos: "0", Showname: "Number", Size: "722", Value: "1", Show: "1"},
					},
				},
				{
					Name:     "ip",
					Pos:      "14",
					Showname: "Internet Protocol Version 4, Src: 192.168.66.1, Dst: 192.168.66.121",
					Size:     "20",
					Hide:     "yes",
					Fields: []api.Field{
						{
							Name:     "ip.addr",
							Pos:      "30",
							Showname: "Source or Destination Address: 192.168.66.121",
							Size:     "4",
							Value:    "c0a84279",
							Show:     "192.168.66.121",
							Hide:     "yes",
						},
						{
							Name:     "ip.flags",
							Pos:      "20",
							Showname: "Flags: 0x4000, Don't fragment",
							Size:     "2",
							Value:    "4000",
							Show:     "0x00004000",
							Fields: []api.Field{
								{
									Name:          "ip.flags.mf",
									Pos:           "20",
									Showname:      "..0. .... .... .... = More fragments: Not set",
									Size:          "2",
									Value:         "0",
									Show:          "0",
									Unmaskedvalue: "4000",
								},
							},
						},
					},
				},
			},
		},
	},
}
